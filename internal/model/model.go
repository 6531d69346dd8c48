package model

import (
	"strings"
	"time"
)

type Status string

const (
	StatusSubmitted  Status = "SUBMITTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusRejected   Status = "REJECTED"
)

// Statuses lists the known statuses in workflow order.
var Statuses = []Status{StatusSubmitted, StatusInProgress, StatusResolved, StatusRejected}

// Active reports whether the status still awaits resolution.
func (s Status) Active() bool {
	return s == StatusSubmitted || s == StatusInProgress
}

// Terminal reports whether the status is a closed state.
func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusRejected
}

func (s Status) Known() bool {
	return s.Active() || s.Terminal()
}

// Label renders the status for display ("IN_PROGRESS" -> "IN PROGRESS").
func (s Status) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

// Time unmarshals both RFC 3339 timestamps and the zone-less form the
// backend emits for LocalDateTime fields. The zero value means "unknown".
type Time struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

func (t *Time) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timeLayouts {
		parsed, err := time.Parse(layout, raw)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(time.RFC3339) + `"`), nil
}

type Grievance struct {
	ID                 int64          `json:"id"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Category           string         `json:"category"`
	Subcategory        string         `json:"subcategory"`
	RegistrationNumber string         `json:"registrationNumber"`
	Status             Status         `json:"status"`
	Priority           string         `json:"priority,omitempty"`
	StudentName        string         `json:"studentName,omitempty"`
	AssignedToName     string         `json:"assignedToName,omitempty"`
	CreatedAt          Time           `json:"createdAt"`
	UpdatedAt          Time           `json:"updatedAt"`
	StatusHistory      []StatusChange `json:"statusHistory,omitempty"`
	Comments           []Comment      `json:"comments,omitempty"`
}

// StatusChange is one audit record of a grievance status transition.
type StatusChange struct {
	ID         int64  `json:"id"`
	FromStatus Status `json:"fromStatus"`
	ToStatus   Status `json:"toStatus"`
	ActorName  string `json:"actorName,omitempty"`
	Reason     string `json:"reason,omitempty"`
	ChangedAt  Time   `json:"changedAt"`
}

type Comment struct {
	ID          int64  `json:"id"`
	Body        string `json:"body"`
	AuthorName  string `json:"authorName,omitempty"`
	AuthorEmail string `json:"authorEmail,omitempty"`
	CreatedAt   Time   `json:"createdAt"`
}

type Subcategory struct {
	ID                  int64  `json:"id"`
	Name                string `json:"name"`
	Description         string `json:"description,omitempty"`
	DefaultAssigneeName string `json:"defaultAssigneeName,omitempty"`
}

type Category struct {
	ID                  int64         `json:"id"`
	Name                string        `json:"name"`
	Description         string        `json:"description,omitempty"`
	DefaultAssigneeName string        `json:"defaultAssigneeName,omitempty"`
	Sensitive           bool          `json:"sensitive,omitempty"`
	HideIdentity        bool          `json:"hideIdentity,omitempty"`
	Subcategories       []Subcategory `json:"subcategories,omitempty"`
}

type User struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	StudentID  string `json:"studentId,omitempty"`
	Department string `json:"department,omitempty"`
	Role       string `json:"role,omitempty"`
}

// Session is the locally persisted login state. Token and Expiry gate
// authenticated screens; the rest is display-only convenience.
type Session struct {
	Token    string
	Expiry   time.Time
	Role     string
	Username string
	Email    string
}
