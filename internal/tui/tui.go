package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Phantom-VK/icrs/internal/api"
	"github.com/Phantom-VK/icrs/internal/model"
	"github.com/Phantom-VK/icrs/internal/session"
	"github.com/Phantom-VK/icrs/internal/views"
	goerrors "github.com/go-errors/errors"
	"github.com/jesseduffield/gocui"
	"go.uber.org/zap"
)

const (
	viewHeader   = "header"
	viewFooter   = "footer"
	viewActive   = "active"
	viewHistory  = "history"
	viewDetail   = "detail"
	viewComments = "comments"
	viewSearch   = "search"
	viewForm     = "form"
	viewHelp     = "help"
)

const (
	screenAuth      = "auth"
	screenDashboard = "dashboard"
)

// Deps carries everything the UI needs. The UI never talks HTTP directly,
// only through the services.
type Deps struct {
	Auth       *api.AuthService
	Grievances *api.GrievanceService
	Sessions   session.Store
	Log        *zap.Logger
}

type UI struct {
	gui        *gocui.Gui
	auth       *api.AuthService
	grievances *api.GrievanceService
	sessions   session.Store
	log        *zap.Logger

	screen string
	user   model.User

	all        []model.Grievance
	active     []model.Grievance
	history    []model.Grievance
	categories []model.Category
	threads    *threadCache

	search       string
	statusFilter model.Status

	selectedActive  int
	selectedHistory int
	focus           string

	form         *formState
	formEditor   *formEditor
	searchActive bool
	helpActive   bool
	loading      bool
	status       string
}

type formEditor struct {
	ui *UI
}

func Run(deps Deps) error {
	gui, err := gocui.NewGui(gocui.NewGuiOpts{OutputMode: gocui.OutputNormal})
	if err != nil {
		return err
	}
	defer gui.Close()

	ui := &UI{
		gui:        gui,
		auth:       deps.Auth,
		grievances: deps.Grievances,
		sessions:   deps.Sessions,
		log:        deps.Log,
		screen:     screenAuth,
		focus:      viewActive,
	}
	if ui.log == nil {
		ui.log = zap.NewNop()
	}
	ui.threads = newThreadCache(deps.Grievances.Comments)
	ui.formEditor = &formEditor{ui: ui}
	gui.Mouse = true

	if session.IsAuthenticated(context.Background(), deps.Sessions, time.Now()) {
		ui.screen = screenDashboard
		ui.loadDashboard()
	} else {
		ui.form = buildLoginForm()
	}

	gui.SetManagerFunc(ui.layout)
	if err := ui.bindKeys(gui); err != nil {
		return err
	}

	if err := gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}

	return nil
}

func (u *UI) bindKeys(gui *gocui.Gui) error {
	if err := gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, u.forceQuit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'q', gocui.ModNone, u.quit); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'r', gocui.ModNone, u.reload); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'g', gocui.ModNone, u.clearFilters); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'f', gocui.ModNone, u.cycleStatusFilter); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'n', gocui.ModNone, u.newGrievance); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'm', gocui.ModNone, u.addComment); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'u', gocui.ModNone, u.updateStatus); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'c', gocui.ModNone, u.refreshComments); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", 'o', gocui.ModNone, u.logout); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '/', gocui.ModNone, u.startSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '?', gocui.ModNone, u.toggleHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", gocui.KeyTab, gocui.ModNone, u.switchFocus); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '1', gocui.ModNone, u.focusActive); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '2', gocui.ModNone, u.focusHistory); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '3', gocui.ModNone, u.focusDetail); err != nil {
		return err
	}
	if err := gui.SetKeybinding("", '4', gocui.ModNone, u.focusComments); err != nil {
		return err
	}
	for _, name := range []string{viewActive, viewHistory, viewComments} {
		if err := gui.SetKeybinding(name, gocui.KeyArrowDown, gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'j', gocui.ModNone, u.moveDown); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.KeyArrowUp, gocui.ModNone, u.moveUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, 'k', gocui.ModNone, u.moveUp); err != nil {
			return err
		}
	}
	if err := gui.SetKeybinding(viewActive, gocui.KeyEnter, gocui.ModNone, u.expandSelected); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHistory, gocui.KeyEnter, gocui.ModNone, u.expandSelected); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSearch, gocui.KeyEnter, gocui.ModNone, u.submitSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewSearch, gocui.KeyEsc, gocui.ModNone, u.cancelSearch); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEnter, gocui.ModNone, u.submitFormNow); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyCtrlJ, gocui.ModNone, u.submitFormNow); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyTab, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyBacktab, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowDown, gocui.ModNone, u.nextFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyArrowUp, gocui.ModNone, u.prevFormField); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyEsc, gocui.ModNone, u.cancelForm); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyCtrlS, gocui.ModNone, u.showSignup); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyCtrlL, gocui.ModNone, u.showLogin); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyCtrlE, gocui.ModNone, u.showVerify); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewForm, gocui.KeyCtrlR, gocui.ModNone, u.resendCode); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, gocui.KeyEsc, gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, 'q', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetKeybinding(viewHelp, '?', gocui.ModNone, u.closeHelp); err != nil {
		return err
	}
	if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewActive, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
		return u.onListClick(gui, viewActive, opts)
	}}); err != nil {
		return err
	}
	if err := gui.SetViewClickBinding(&gocui.ViewMouseBinding{ViewName: viewHistory, Key: gocui.MouseLeft, Handler: func(opts gocui.ViewMouseBindingOpts) error {
		return u.onListClick(gui, viewHistory, opts)
	}}); err != nil {
		return err
	}
	return u.bindMouseScroll(gui)
}

func (u *UI) bindMouseScroll(gui *gocui.Gui) error {
	for _, name := range []string{viewActive, viewHistory, viewDetail, viewComments} {
		if err := gui.SetKeybinding(name, gocui.MouseWheelUp, gocui.ModNone, u.scrollUp); err != nil {
			return err
		}
		if err := gui.SetKeybinding(name, gocui.MouseWheelDown, gocui.ModNone, u.scrollDown); err != nil {
			return err
		}
	}
	return nil
}

func (u *UI) layout(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	if maxX <= 0 || maxY <= 0 {
		return nil
	}

	headerView, err := gui.SetView(viewHeader, 0, 0, maxX-1, 0, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	headerView.Frame = false
	headerView.Wrap = true
	headerView.FgColor = gocui.ColorDefault
	u.renderHeader(headerView)

	footerY1 := maxY - 2
	if footerY1 < 1 {
		footerY1 = 1
	}
	footerY0 := footerY1 - 2
	if footerY0 < 1 {
		footerY0 = 1
	}
	footerView, err := gui.SetView(viewFooter, 0, footerY0, maxX-1, footerY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	footerView.Frame = false
	footerView.Wrap = true
	footerView.FgColor = gocui.ColorDefault | gocui.AttrDim
	u.renderFooter(footerView)

	if u.screen == screenDashboard {
		if err := u.layoutDashboard(gui, maxX, footerY0); err != nil {
			return err
		}
	} else {
		for _, name := range []string{viewActive, viewHistory, viewDetail, viewComments} {
			_ = gui.DeleteView(name)
		}
	}

	_, _ = gui.SetViewOnTop(viewHeader)
	_, _ = gui.SetViewOnTop(viewFooter)

	if u.searchActive {
		if err := u.showSearch(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewSearch)
	}

	if u.form != nil {
		if err := u.showForm(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewForm)
	}

	if u.helpActive {
		if err := u.showHelp(gui); err != nil {
			return err
		}
	} else {
		_ = gui.DeleteView(viewHelp)
	}

	if gui.CurrentView() == nil && u.screen == screenDashboard {
		_, _ = gui.SetCurrentView(u.focus)
	}

	gui.Cursor = u.searchActive || u.form != nil

	return nil
}

func (u *UI) layoutDashboard(gui *gocui.Gui, maxX, footerY0 int) error {
	bodyTop := 1
	bodyBottom := footerY0 - 1
	if bodyBottom < bodyTop {
		return nil
	}

	bodyHeight := bodyBottom - bodyTop + 1
	leftWidth := maxX / 2
	if leftWidth < 30 {
		leftWidth = min(30, maxX-1)
	}
	rightX0 := leftWidth + 1
	if rightX0 >= maxX {
		rightX0 = leftWidth
	}

	activeHeight := bodyHeight / 2
	if activeHeight < 4 {
		activeHeight = 4
	}
	activeY1 := bodyTop + activeHeight - 1
	historyY0 := activeY1 + 1

	detailHeight := bodyHeight * 2 / 3
	if detailHeight < 5 {
		detailHeight = 5
	}
	detailY1 := bodyTop + detailHeight - 1
	commentsY0 := detailY1 + 1

	activeView, err := gui.SetView(viewActive, 0, bodyTop, leftWidth-1, activeY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		activeView.Title = "1 Active"
		activeView.TitleColor = gocui.ColorYellow
	}
	applyViewStyle(activeView, u.focus == viewActive, true)
	u.renderGrievanceList(activeView, u.active, u.selectedActive, u.focus == viewActive)

	historyView, err := gui.SetView(viewHistory, 0, historyY0, leftWidth-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		historyView.Title = "2 History"
		historyView.TitleColor = gocui.ColorGreen
	}
	applyViewStyle(historyView, u.focus == viewHistory, true)
	u.renderGrievanceList(historyView, u.history, u.selectedHistory, u.focus == viewHistory)

	detailView, err := gui.SetView(viewDetail, rightX0, bodyTop, maxX-1, detailY1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		detailView.Title = "3 Detail"
	}
	applyViewStyle(detailView, u.focus == viewDetail, false)
	u.renderDetail(detailView)

	commentsView, err := gui.SetView(viewComments, rightX0, commentsY0, maxX-1, bodyBottom, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		commentsView.Title = "4 Comments"
		commentsView.TitleColor = gocui.ColorCyan
	}
	applyViewStyle(commentsView, u.focus == viewComments, false)
	u.renderComments(commentsView)

	return nil
}

func (u *UI) renderHeader(view *gocui.View) {
	view.Clear()
	if u.screen != screenDashboard {
		fmt.Fprint(view, "College Grievance Redressal | not signed in")
		return
	}

	who := u.user.Username
	if who == "" {
		who = u.user.Email
	}
	role := u.user.Role
	if role == "" {
		role = "STUDENT"
	}

	query := strings.TrimSpace(u.search)
	if query == "" {
		query = "type / to search"
	}
	filterLabel := "all"
	if u.statusFilter != "" {
		filterLabel = u.statusFilter.Label()
	}

	fmt.Fprintf(view, "%s (%s) | Search: %s | Filter: %s | %s",
		who, role, query, filterLabel, formatCounts(views.Counts(u.all), len(u.all)))
}

func (u *UI) renderFooter(view *gocui.View) {
	view.Clear()
	view.SetOrigin(0, 0)
	view.SetCursor(0, 0)

	if u.screen == screenDashboard {
		fmt.Fprintln(view, "n new | m comment | u status | enter expand | c refresh comments | r reload | / search | f filter | g clear")
		fmt.Fprintln(view, "tab cycle | 1-4 panes | j/k move | o logout | ? help | q quit")
	} else {
		fmt.Fprintln(view, "enter submit | tab next field | esc clear")
		fmt.Fprintln(view, "ctrl+l login | ctrl+s sign up | ctrl+e verify | ctrl+r resend code | ctrl+c quit")
	}
	if u.loading {
		fmt.Fprint(view, "Loading...")
	} else if u.status != "" {
		fmt.Fprint(view, u.status)
	}
}

func (u *UI) renderGrievanceList(view *gocui.View, list []model.Grievance, selected int, focused bool) {
	view.Clear()
	for i, g := range list {
		prefix := " "
		if i == selected {
			if focused {
				prefix = ">"
			} else {
				prefix = "*"
			}
		}
		fmt.Fprintf(view, "%s %s\n", prefix, formatGrievanceSummary(g))
	}
	if focused {
		view.SetCursor(0, min(selected, len(list)-1))
	}
}

func (u *UI) renderDetail(view *gocui.View) {
	view.Clear()
	selected := u.selectedGrievance()
	if selected == nil {
		fmt.Fprint(view, "No grievance selected")
		return
	}

	lines := []string{
		selected.Title,
		fmt.Sprintf("Status: %s", selected.Status.Label()),
		fmt.Sprintf("Category: %s / %s", selected.Category, selected.Subcategory),
	}
	if selected.Priority != "" {
		lines = append(lines, fmt.Sprintf("Priority: %s", selected.Priority))
	}
	if selected.RegistrationNumber != "" {
		lines = append(lines, fmt.Sprintf("Registration: %s", selected.RegistrationNumber))
	}
	if selected.AssignedToName != "" {
		lines = append(lines, fmt.Sprintf("Assigned to: %s", selected.AssignedToName))
	}
	if !selected.CreatedAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Created: %s", selected.CreatedAt.Format("2006-01-02 15:04")))
	}
	lines = append(lines, "", selected.Description)

	if changes := views.SortStatusHistory(selected.StatusHistory); len(changes) > 0 {
		lines = append(lines, "", "Status history:")
		for _, change := range changes {
			lines = append(lines, "  "+formatStatusChange(change))
		}
	}

	fmt.Fprint(view, strings.Join(lines, "\n"))
}

func (u *UI) renderComments(view *gocui.View) {
	view.Clear()
	selected := u.selectedGrievance()
	if selected == nil {
		fmt.Fprint(view, "No grievance selected")
		return
	}

	state := u.threads.State(selected.ID)
	switch {
	case state.Loading:
		fmt.Fprint(view, "Loading comments...")
	case state.Err != "":
		fmt.Fprint(view, state.Err)
	case !state.Loaded:
		fmt.Fprint(view, "Press enter on a grievance to load comments")
	case len(state.Comments) == 0:
		fmt.Fprint(view, "No comments yet")
	default:
		for _, comment := range state.Comments {
			fmt.Fprintln(view, formatComment(comment))
		}
	}
}

func (u *UI) selectedGrievance() *model.Grievance {
	switch u.focus {
	case viewHistory:
		if u.selectedHistory >= 0 && u.selectedHistory < len(u.history) {
			return &u.history[u.selectedHistory]
		}
	default:
		if u.selectedActive >= 0 && u.selectedActive < len(u.active) {
			return &u.active[u.selectedActive]
		}
		if u.selectedHistory >= 0 && u.selectedHistory < len(u.history) {
			return &u.history[u.selectedHistory]
		}
	}
	return nil
}

// loadDashboard fetches everything the dashboard shows. Network work runs off
// the gui loop and folds results back in through gui.Update.
func (u *UI) loadDashboard() {
	if u.loading {
		return
	}
	u.loading = true

	go func() {
		ctx := context.Background()

		user, userErr := u.auth.CurrentUser(ctx)
		var list []model.Grievance
		var listErr error
		if userErr == nil && canModerate(user.Role) {
			list, listErr = u.grievances.List(ctx, api.ListParams{Size: 100})
		} else {
			list, listErr = u.grievances.Mine(ctx)
		}
		categories, catErr := u.grievances.Categories(ctx)

		u.gui.Update(func(*gocui.Gui) error {
			u.finishDashboardLoad(user, userErr, list, listErr, categories, catErr)
			return nil
		})
	}()
}

func (u *UI) finishDashboardLoad(user model.User, userErr error, list []model.Grievance, listErr error, categories []model.Category, catErr error) {
	u.loading = false
	if userErr != nil {
		if u.failed(userErr, "Failed to load profile.") {
			return
		}
	} else {
		u.user = user
	}
	if listErr != nil {
		u.failed(listErr, "Failed to load grievances.")
		return
	}
	if catErr == nil {
		u.categories = categories
	}
	u.all = list
	u.applyFilters()
	// A profile failure stays on the status line; only a fully clean load
	// clears it.
	if userErr == nil {
		u.status = ""
	}
}

// applyFilters recomputes the visible lists from the full set. Pure and cheap,
// safe to run on every keystroke result.
func (u *UI) applyFilters() {
	filtered := filterBySearch(u.all, u.search)
	if u.statusFilter != "" {
		kept := make([]model.Grievance, 0, len(filtered))
		for _, g := range filtered {
			if g.Status == u.statusFilter {
				kept = append(kept, g)
			}
		}
		filtered = kept
	}

	u.active = views.Active(filtered)
	u.history = views.History(filtered)

	if u.selectedActive >= len(u.active) {
		u.selectedActive = max(len(u.active)-1, 0)
	}
	if u.selectedHistory >= len(u.history) {
		u.selectedHistory = max(len(u.history)-1, 0)
	}
}

// failed routes an operation error. A 401 means the stored session is gone;
// everything else becomes a status line. Reports whether the session expired.
func (u *UI) failed(err error, fallback string) bool {
	if api.IsUnauthorized(err) {
		u.sessionExpired()
		return true
	}
	if api.IsForbidden(err) {
		u.status = api.ErrorMessage(err, "You are not allowed to do that.")
		return false
	}
	u.status = api.ErrorMessage(err, fallback)
	return false
}

func (u *UI) sessionExpired() {
	u.log.Info("session expired, returning to login")
	u.resetDashboard()
	u.screen = screenAuth
	u.form = buildLoginForm()
	u.status = "Session expired. Please log in again."
}

func (u *UI) resetDashboard() {
	u.user = model.User{}
	u.all = nil
	u.active = nil
	u.history = nil
	u.selectedActive = 0
	u.selectedHistory = 0
	u.search = ""
	u.statusFilter = ""
	u.threads = newThreadCache(u.grievances.Comments)
}

func canModerate(role string) bool {
	switch strings.ToUpper(role) {
	case "FACULTY", "ADMIN":
		return true
	}
	return false
}

func (u *UI) expandSelected(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	selected := u.selectedGrievance()
	if selected == nil {
		return nil
	}

	// Expanding refreshes the grievance itself too, so the detail pane shows
	// current status history alongside the comments.
	id := selected.ID
	go func() {
		ctx := context.Background()
		fresh, err := u.grievances.Get(ctx, id)
		u.threads.Load(ctx, id)
		u.gui.Update(func(*gocui.Gui) error {
			if err != nil {
				if api.IsUnauthorized(err) {
					u.sessionExpired()
				}
				return nil
			}
			u.replaceGrievance(fresh)
			return nil
		})
	}()
	return nil
}

// refreshComments drops the cached thread for the selected grievance and
// fetches it again.
func (u *UI) refreshComments(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	selected := u.selectedGrievance()
	if selected == nil {
		return nil
	}

	id := selected.ID
	u.threads.Invalidate(id)
	go func() {
		u.threads.Load(context.Background(), id)
		u.gui.Update(func(*gocui.Gui) error { return nil })
	}()
	return nil
}

// replaceGrievance folds a server-fresh grievance into the full set and
// recomputes the visible lists.
func (u *UI) replaceGrievance(g model.Grievance) {
	for i := range u.all {
		if u.all[i].ID == g.ID {
			u.all[i] = g
		}
	}
	u.applyFilters()
}

func (u *UI) newGrievance(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	u.form = buildSubmitForm(u.categories)
	return nil
}

func (u *UI) addComment(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	selected := u.selectedGrievance()
	if selected == nil {
		return nil
	}
	u.form = buildCommentForm(selected.ID)
	return nil
}

func (u *UI) updateStatus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	if !canModerate(u.user.Role) {
		u.status = "Only faculty can update grievance status."
		return nil
	}
	selected := u.selectedGrievance()
	if selected == nil {
		return nil
	}
	u.form = buildStatusForm(*selected)
	return nil
}

func (u *UI) logout(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	if err := u.auth.Logout(context.Background()); err != nil {
		u.status = api.ErrorMessage(err, "Failed to log out.")
		return nil
	}
	u.resetDashboard()
	u.screen = screenAuth
	u.form = buildLoginForm()
	u.status = "Logged out."
	return nil
}

func (u *UI) submitFormNow(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil || u.loading {
		return nil
	}

	switch u.form.kind {
	case formLogin:
		return u.submitLogin()
	case formSignup:
		return u.submitSignup()
	case formVerify:
		return u.submitVerify()
	case formSubmit:
		return u.submitGrievance(gui)
	case formComment:
		return u.submitComment(gui)
	case formStatus:
		return u.submitStatus(gui)
	}
	return nil
}

func (u *UI) submitLogin() error {
	email, password, err := parseLoginForm(u.form.fields)
	if err != nil {
		u.status = err.Error()
		return nil
	}

	u.loading = true
	go func() {
		_, loginErr := u.auth.Login(context.Background(), email, password)
		u.gui.Update(func(*gocui.Gui) error {
			u.loading = false
			if loginErr != nil {
				u.status = api.ErrorMessage(loginErr, "Login failed. Please try again.")
				return nil
			}
			u.form = nil
			u.screen = screenDashboard
			u.status = ""
			u.loadDashboard()
			return nil
		})
	}()
	return nil
}

func (u *UI) submitSignup() error {
	input, err := parseSignupForm(u.form.fields)
	if err != nil {
		u.status = err.Error()
		return nil
	}

	u.loading = true
	go func() {
		_, signupErr := u.auth.Register(context.Background(), input)
		u.gui.Update(func(*gocui.Gui) error {
			u.loading = false
			if signupErr != nil {
				u.status = api.ErrorMessage(signupErr, "Signup failed. Please try again.")
				return nil
			}
			u.status = "Account created. Check your email for a verification code."
			u.scheduleForm(buildVerifyForm(input.Email))
			return nil
		})
	}()
	return nil
}

func (u *UI) submitVerify() error {
	email, code, err := parseVerifyForm(u.form.fields)
	if err != nil {
		u.status = err.Error()
		return nil
	}

	u.loading = true
	go func() {
		message, verifyErr := u.auth.Verify(context.Background(), email, code)
		u.gui.Update(func(*gocui.Gui) error {
			u.loading = false
			if verifyErr != nil {
				u.status = api.ErrorMessage(verifyErr, "Verification failed. Please try again.")
				return nil
			}
			u.status = message
			form := buildLoginForm()
			form.fields[loginFieldEmail].Value = email
			u.scheduleForm(form)
			return nil
		})
	}()
	return nil
}

func (u *UI) resendCode(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil || u.form.kind != formVerify || u.loading {
		return nil
	}
	email := trimmed(u.form.fields, verifyFieldEmail)
	if email == "" {
		u.status = errMissingFields.Error()
		return nil
	}

	u.loading = true
	go func() {
		message, err := u.auth.Resend(context.Background(), email)
		u.gui.Update(func(*gocui.Gui) error {
			u.loading = false
			if err != nil {
				u.status = api.ErrorMessage(err, "Failed to resend code.")
				return nil
			}
			u.status = message
			return nil
		})
	}()
	return nil
}

func (u *UI) submitGrievance(gui *gocui.Gui) error {
	input, err := parseSubmitForm(u.form.fields)
	if err != nil {
		u.status = err.Error()
		return nil
	}

	u.closeForm(gui)
	u.loading = true
	go func() {
		_, submitErr := u.grievances.Submit(context.Background(), input)
		u.gui.Update(func(*gocui.Gui) error {
			u.loading = false
			if submitErr != nil {
				u.failed(submitErr, "Failed to submit grievance.")
				return nil
			}
			u.status = "Grievance submitted."
			u.clearStatusAfter(2 * time.Second)
			u.loadDashboard()
			return nil
		})
	}()
	return nil
}

func (u *UI) submitComment(gui *gocui.Gui) error {
	body, err := parseCommentForm(u.form.fields)
	if err != nil {
		u.status = err.Error()
		return nil
	}
	id := u.form.grievanceID

	u.closeForm(gui)
	u.loading = true
	go func() {
		comment, commentErr := u.grievances.AddComment(context.Background(), id, body)
		u.gui.Update(func(*gocui.Gui) error {
			u.loading = false
			if commentErr != nil {
				u.failed(commentErr, "Failed to add comment.")
				return nil
			}
			u.threads.Append(id, comment)
			u.status = ""
			return nil
		})
	}()
	return nil
}

func (u *UI) submitStatus(gui *gocui.Gui) error {
	id := u.form.grievanceID
	requested := model.Status(strings.TrimSpace(u.form.fields[0].Value))

	u.closeForm(gui)
	u.loading = true
	go func() {
		updated, updateErr := u.grievances.UpdateStatus(context.Background(), id, requested)
		u.gui.Update(func(*gocui.Gui) error {
			u.loading = false
			if updateErr != nil {
				u.failed(updateErr, "Failed to update status.")
				return nil
			}
			// The server may settle on a different status than the one
			// requested; trust its answer.
			u.replaceGrievance(updated)
			u.status = fmt.Sprintf("Status set to %s.", updated.Status.Label())
			return nil
		})
	}()
	return nil
}

// scheduleForm swaps the centered form after a short pause so the status line
// stays readable.
func (u *UI) scheduleForm(next *formState) {
	time.AfterFunc(1200*time.Millisecond, func() {
		u.gui.Update(func(*gocui.Gui) error {
			if u.screen != screenAuth {
				return nil
			}
			u.form = next
			return nil
		})
	})
}

func (u *UI) clearStatusAfter(d time.Duration) {
	time.AfterFunc(d, func() {
		u.gui.Update(func(*gocui.Gui) error {
			u.status = ""
			return nil
		})
	})
}

func (u *UI) showSignup(gui *gocui.Gui, _ *gocui.View) error {
	if u.screen != screenAuth || u.loading {
		return nil
	}
	u.form = buildSignupForm()
	u.status = ""
	return nil
}

func (u *UI) showLogin(gui *gocui.Gui, _ *gocui.View) error {
	if u.screen != screenAuth || u.loading {
		return nil
	}
	u.form = buildLoginForm()
	u.status = ""
	return nil
}

func (u *UI) showVerify(gui *gocui.Gui, _ *gocui.View) error {
	if u.screen != screenAuth || u.loading {
		return nil
	}
	email := ""
	if u.form != nil && len(u.form.fields) > 0 && strings.HasPrefix(u.form.fields[0].Label, "College Email") {
		email = trimmed(u.form.fields, 0)
	}
	u.form = buildVerifyForm(email)
	u.status = ""
	return nil
}

func (u *UI) cancelForm(gui *gocui.Gui, _ *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.screen == screenAuth {
		// The auth screen always shows a form; esc resets it instead.
		kind := u.form.kind
		switch kind {
		case formSignup:
			u.form = buildSignupForm()
		case formVerify:
			u.form = buildVerifyForm("")
		default:
			u.form = buildLoginForm()
		}
		u.status = ""
		return nil
	}
	u.closeForm(gui)
	return nil
}

func (u *UI) closeForm(gui *gocui.Gui) {
	u.form = nil
	u.status = ""
	_ = gui.DeleteView(viewForm)
	_, _ = gui.SetCurrentView(u.focus)
}

func (u *UI) showForm(gui *gocui.Gui) error {
	if u.form == nil {
		return nil
	}

	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	if width > maxX-2 {
		width = maxX - 2
	}
	height := max(len(u.form.fields)+2, 4)
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2
	x1 := x0 + width
	y1 := y0 + height

	view, err := gui.SetView(viewForm, x0, y0, x1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Wrap = true
	}
	view.Title = u.form.title
	view.Editable = true
	view.KeybindOnEdit = true
	view.Editor = u.formEditor
	u.renderForm(view)
	_, _ = gui.SetCurrentView(viewForm)
	return nil
}

func (u *UI) renderForm(view *gocui.View) {
	if u.form == nil || view == nil {
		return
	}
	view.Clear()
	for index, field := range u.form.fields {
		prefix := "  "
		if index == u.form.index {
			prefix = "> "
		}
		value := field.Value
		if field.Secret {
			value = strings.Repeat("*", len([]rune(field.Value)))
		}
		fmt.Fprintf(view, "%s%s: %s\n", prefix, field.Label, value)
	}
	field := u.form.fields[u.form.index]
	value := field.Value
	if field.Secret {
		value = strings.Repeat("*", len([]rune(field.Value)))
	}
	cursorX := len([]rune(field.Label)) + len([]rune(value)) + 4
	view.SetCursor(cursorX, u.form.index)
}

func (u *UI) nextFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index < len(u.form.fields)-1 {
		u.form.index++
	}
	u.renderForm(view)
	return nil
}

func (u *UI) prevFormField(gui *gocui.Gui, view *gocui.View) error {
	if u.form == nil {
		return nil
	}
	if u.form.index > 0 {
		u.form.index--
	}
	u.renderForm(view)
	return nil
}

func (e *formEditor) Edit(view *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) bool {
	ui := e.ui
	if ui == nil || ui.form == nil || view == nil {
		return false
	}
	field := &ui.form.fields[ui.form.index]

	if len(field.Options) > 0 {
		switch key {
		case gocui.KeyArrowRight, gocui.KeySpace:
			field.Value = cycleOption(field.Options, field.Value, 1)
			ui.syncSubcategory()
		case gocui.KeyArrowLeft:
			field.Value = cycleOption(field.Options, field.Value, -1)
			ui.syncSubcategory()
		}
		ui.renderForm(view)
		return true
	}

	switch key {
	case gocui.KeyBackspace, gocui.KeyBackspace2:
		runes := []rune(field.Value)
		if len(runes) > 0 {
			field.Value = string(runes[:len(runes)-1])
		}
	case gocui.KeySpace:
		field.Value += " "
	case gocui.KeyCtrlU:
		field.Value = ""
	}

	if ch != 0 && ch != '\n' && ch != '\r' && mod == 0 {
		field.Value += string(ch)
	}

	ui.renderForm(view)
	return true
}

// syncSubcategory keeps the subcategory choices in step with the picked
// category.
func (u *UI) syncSubcategory() {
	if u.form == nil || u.form.kind != formSubmit || u.form.index != submitFieldCategory {
		return
	}
	sub := &u.form.fields[submitFieldSubcategory]
	sub.Options = subcategoryOptions(u.categories, u.form.fields[submitFieldCategory].Value)
	sub.Value = ""
	if len(sub.Options) > 0 {
		sub.Value = sub.Options[0]
	}
}

func (u *UI) startSearch(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	u.searchActive = true
	return nil
}

func (u *UI) showSearch(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(30, maxX/2)
	height := 3
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2
	x1 := x0 + width
	y1 := y0 + height

	view, err := gui.SetView(viewSearch, x0, y0, x1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Search"
		view.Wrap = true
		view.Clear()
		fmt.Fprint(view, u.search)
	}
	view.Editable = true
	view.Editor = gocui.DefaultEditor
	_, _ = gui.SetCurrentView(viewSearch)
	return nil
}

func (u *UI) submitSearch(gui *gocui.Gui, view *gocui.View) error {
	u.search = strings.TrimSpace(view.Buffer())
	u.searchActive = false
	u.status = ""
	_ = gui.DeleteView(viewSearch)
	_, _ = gui.SetCurrentView(u.focus)
	u.applyFilters()
	return nil
}

func (u *UI) cancelSearch(gui *gocui.Gui, _ *gocui.View) error {
	u.searchActive = false
	_ = gui.DeleteView(viewSearch)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) clearFilters(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	u.search = ""
	u.statusFilter = ""
	u.applyFilters()
	return nil
}

func (u *UI) cycleStatusFilter(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	order := append([]model.Status{""}, model.Statuses...)
	for i, status := range order {
		if status == u.statusFilter {
			u.statusFilter = order[(i+1)%len(order)]
			u.applyFilters()
			return nil
		}
	}
	u.statusFilter = ""
	u.applyFilters()
	return nil
}

func (u *UI) reload(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	u.status = ""
	u.loadDashboard()
	return nil
}

func (u *UI) switchFocus(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	switch u.focus {
	case viewActive:
		u.focus = viewHistory
	case viewHistory:
		u.focus = viewDetail
	case viewDetail:
		u.focus = viewComments
	default:
		u.focus = viewActive
	}
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) focusActive(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewActive)
}

func (u *UI) focusHistory(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewHistory)
}

func (u *UI) focusDetail(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewDetail)
}

func (u *UI) focusComments(gui *gocui.Gui, _ *gocui.View) error {
	return u.setFocus(gui, viewComments)
}

func (u *UI) setFocus(gui *gocui.Gui, name string) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	u.focus = name
	_, _ = gui.SetCurrentView(name)
	return nil
}

func (u *UI) moveDown(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewActive:
		if u.selectedActive < len(u.active)-1 {
			u.selectedActive++
		}
	case viewHistory:
		if u.selectedHistory < len(u.history)-1 {
			u.selectedHistory++
		}
	}
	return nil
}

func (u *UI) moveUp(gui *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	switch u.focus {
	case viewActive:
		if u.selectedActive > 0 {
			u.selectedActive--
		}
	case viewHistory:
		if u.selectedHistory > 0 {
			u.selectedHistory--
		}
	}
	return nil
}

func (u *UI) onListClick(gui *gocui.Gui, viewName string, opts gocui.ViewMouseBindingOpts) error {
	if u.inputActive() || u.screen != screenDashboard {
		return nil
	}
	view, err := gui.View(viewName)
	if err != nil {
		return nil
	}

	_, y0, _, _ := view.Dimensions()
	_, oy := view.Origin()
	row := opts.Y - y0 - 1 + oy
	if row < 0 {
		row = 0
	}

	switch viewName {
	case viewActive:
		u.selectedActive = min(row, len(u.active)-1)
		return u.setFocus(gui, viewActive)
	case viewHistory:
		u.selectedHistory = min(row, len(u.history)-1)
		return u.setFocus(gui, viewHistory)
	default:
		return nil
	}
}

func (u *UI) scrollUp(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollUp(1)
	return nil
}

func (u *UI) scrollDown(gui *gocui.Gui, view *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	if view == nil {
		view = gui.CurrentView()
	}
	if view == nil {
		return nil
	}
	view.ScrollDown(1)
	return nil
}

func (u *UI) toggleHelp(gui *gocui.Gui, _ *gocui.View) error {
	if u.screen != screenDashboard {
		return nil
	}
	if u.inputActive() && !u.helpActive {
		return nil
	}
	u.helpActive = !u.helpActive
	return nil
}

func (u *UI) closeHelp(gui *gocui.Gui, _ *gocui.View) error {
	u.helpActive = false
	_ = gui.DeleteView(viewHelp)
	_, _ = gui.SetCurrentView(u.focus)
	return nil
}

func (u *UI) showHelp(gui *gocui.Gui) error {
	maxX, maxY := gui.Size()
	width := max(60, maxX/2)
	height := 14
	x0 := (maxX - width) / 2
	y0 := (maxY - height) / 2
	x1 := x0 + width
	y1 := y0 + height

	view, err := gui.SetView(viewHelp, x0, y0, x1, y1, 0)
	if err != nil && !goerrors.Is(err, gocui.ErrUnknownView) {
		return err
	}
	if goerrors.Is(err, gocui.ErrUnknownView) {
		view.Title = "Help"
		view.Wrap = true
	}
	view.Clear()
	fmt.Fprint(view, helpText())
	_, _ = gui.SetCurrentView(viewHelp)
	return nil
}

func helpText() string {
	return strings.Join([]string{
		"Navigation:",
		"  Tab cycle panes | 1 Active | 2 History | 3 Detail | 4 Comments",
		"  j/k or arrows move selection",
		"  mouse click to focus/select, wheel scrolls hovered pane",
		"",
		"Actions:",
		"  n new grievance | m add comment | u update status (faculty)",
		"  enter expand selected grievance and load its comments",
		"  c re-fetch comments for the selected grievance",
		"  enter save (form) | tab next field | esc close form",
		"",
		"Search/Filter:",
		"  / search | f cycle status filter | g clear filters",
		"",
		"Other:",
		"  r reload | o logout | ? help | esc/q close help | q quit",
	}, "\n")
}

func (u *UI) inputActive() bool {
	return u.searchActive || u.form != nil || u.helpActive
}

func (u *UI) quit(_ *gocui.Gui, _ *gocui.View) error {
	if u.inputActive() {
		return nil
	}
	return gocui.ErrQuit
}

func (u *UI) forceQuit(_ *gocui.Gui, _ *gocui.View) error {
	return gocui.ErrQuit
}

func applyViewStyle(view *gocui.View, focused bool, highlight bool) {
	view.Frame = true
	view.Highlight = focused && highlight
	view.HighlightInactive = false
	view.SelBgColor = gocui.ColorBlue
	view.SelFgColor = gocui.ColorBlack
	view.InactiveViewSelBgColor = gocui.ColorDefault
	if focused {
		view.FrameColor = gocui.ColorCyan
		view.TitleColor = gocui.ColorCyan
	} else {
		view.FrameColor = gocui.ColorDefault
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
