package tui

import (
	"errors"
	"strings"

	"github.com/Phantom-VK/icrs/internal/api"
	"github.com/Phantom-VK/icrs/internal/model"
)

type formKind int

const (
	formLogin formKind = iota
	formSignup
	formVerify
	formSubmit
	formComment
	formStatus
)

type formField struct {
	Label   string
	Value   string
	Secret  bool     // rendered masked
	Options []string // non-empty: value cycles with space and arrows
}

type formState struct {
	kind        formKind
	title       string
	fields      []formField
	index       int
	grievanceID int64 // target for comment and status forms
}

const (
	loginFieldEmail = iota
	loginFieldPassword
)

func buildLoginForm() *formState {
	return &formState{
		kind:  formLogin,
		title: "Login",
		fields: []formField{
			{Label: "College Email"},
			{Label: "Password", Secret: true},
		},
	}
}

const (
	signupFieldName = iota
	signupFieldStudentID
	signupFieldDepartment
	signupFieldEmail
	signupFieldPassword
	signupFieldConfirm
)

func buildSignupForm() *formState {
	return &formState{
		kind:  formSignup,
		title: "Create Account",
		fields: []formField{
			{Label: "Full Name"},
			{Label: "Student ID"},
			{Label: "Department"},
			{Label: "College Email"},
			{Label: "Password", Secret: true},
			{Label: "Confirm Password", Secret: true},
		},
	}
}

const (
	verifyFieldEmail = iota
	verifyFieldCode
)

func buildVerifyForm(email string) *formState {
	return &formState{
		kind:  formVerify,
		title: "Verify Account",
		fields: []formField{
			{Label: "College Email", Value: email},
			{Label: "Verification Code"},
		},
	}
}

const (
	submitFieldTitle = iota
	submitFieldDescription
	submitFieldCategory
	submitFieldSubcategory
	submitFieldRegistration
)

func buildSubmitForm(categories []model.Category) *formState {
	catOptions := categoryOptions(categories)
	form := &formState{
		kind:  formSubmit,
		title: "New Grievance",
		fields: []formField{
			{Label: "Title"},
			{Label: "Description"},
			{Label: "Category (space/←→)", Options: catOptions},
			{Label: "Subcategory (space/←→)"},
			{Label: "Registration Number"},
		},
	}
	if len(catOptions) > 0 {
		form.fields[submitFieldCategory].Value = catOptions[0]
		form.fields[submitFieldSubcategory].Options = subcategoryOptions(categories, catOptions[0])
		if opts := form.fields[submitFieldSubcategory].Options; len(opts) > 0 {
			form.fields[submitFieldSubcategory].Value = opts[0]
		}
	}
	return form
}

func buildCommentForm(grievanceID int64) *formState {
	return &formState{
		kind:        formComment,
		title:       "Add Comment",
		grievanceID: grievanceID,
		fields: []formField{
			{Label: "Comment"},
		},
	}
}

func buildStatusForm(g model.Grievance) *formState {
	options := make([]string, 0, len(model.Statuses))
	for _, status := range model.Statuses {
		options = append(options, string(status))
	}
	return &formState{
		kind:        formStatus,
		title:       "Update Status",
		grievanceID: g.ID,
		fields: []formField{
			{Label: "Status (space/←→)", Value: string(g.Status), Options: options},
		},
	}
}

func categoryOptions(categories []model.Category) []string {
	result := make([]string, 0, len(categories))
	for _, c := range categories {
		result = append(result, c.Name)
	}
	return result
}

func subcategoryOptions(categories []model.Category, categoryName string) []string {
	for _, c := range categories {
		if c.Name != categoryName {
			continue
		}
		result := make([]string, 0, len(c.Subcategories))
		for _, sc := range c.Subcategories {
			result = append(result, sc.Name)
		}
		return result
	}
	return nil
}

// Validation happens before any network call; these errors never leave the
// client.
var (
	errMissingFields    = errors.New("Please fill in all required fields.")
	errPasswordMismatch = errors.New("Passwords do not match.")
	errEmptyComment     = errors.New("Comment cannot be empty.")
)

func trimmed(fields []formField, index int) string {
	return strings.TrimSpace(fields[index].Value)
}

func parseLoginForm(fields []formField) (email, password string, err error) {
	email = trimmed(fields, loginFieldEmail)
	password = fields[loginFieldPassword].Value
	if email == "" || password == "" {
		return "", "", errMissingFields
	}
	return email, password, nil
}

func parseSignupForm(fields []formField) (api.SignupInput, error) {
	input := api.SignupInput{
		Username:   trimmed(fields, signupFieldName),
		StudentID:  trimmed(fields, signupFieldStudentID),
		Department: trimmed(fields, signupFieldDepartment),
		Email:      trimmed(fields, signupFieldEmail),
		Password:   fields[signupFieldPassword].Value,
	}
	if input.Username == "" || input.StudentID == "" || input.Department == "" ||
		input.Email == "" || input.Password == "" {
		return api.SignupInput{}, errMissingFields
	}
	if input.Password != fields[signupFieldConfirm].Value {
		return api.SignupInput{}, errPasswordMismatch
	}
	return input, nil
}

func parseVerifyForm(fields []formField) (email, code string, err error) {
	email = trimmed(fields, verifyFieldEmail)
	code = trimmed(fields, verifyFieldCode)
	if email == "" || code == "" {
		return "", "", errMissingFields
	}
	return email, code, nil
}

func parseSubmitForm(fields []formField) (api.SubmitInput, error) {
	input := api.SubmitInput{
		Title:              trimmed(fields, submitFieldTitle),
		Description:        trimmed(fields, submitFieldDescription),
		Category:           trimmed(fields, submitFieldCategory),
		Subcategory:        trimmed(fields, submitFieldSubcategory),
		RegistrationNumber: trimmed(fields, submitFieldRegistration),
	}
	if input.Title == "" || input.Description == "" || input.Category == "" || input.Subcategory == "" {
		return api.SubmitInput{}, errMissingFields
	}
	return input, nil
}

func parseCommentForm(fields []formField) (string, error) {
	body := strings.TrimSpace(fields[0].Value)
	if body == "" {
		return "", errEmptyComment
	}
	return body, nil
}

func cycleOption(options []string, current string, delta int) string {
	if len(options) == 0 {
		return current
	}
	index := 0
	for i, option := range options {
		if option == current {
			index = i
			break
		}
	}
	index = (index + delta + len(options)) % len(options)
	return options[index]
}
