package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Phantom-VK/icrs/internal/model"
)

// GrievanceService wraps the /grievances and /categories endpoints.
type GrievanceService struct {
	c *Client
}

func NewGrievanceService(c *Client) *GrievanceService {
	return &GrievanceService{c: c}
}

// SubmitInput is the canonical submission contract: free-text category and
// subcategory names, as the backend's request DTO expects. The category
// picker feeds it names straight from GET /categories.
type SubmitInput struct {
	Title              string `json:"title"`
	Description        string `json:"description"`
	Category           string `json:"category"`
	Subcategory        string `json:"subcategory"`
	RegistrationNumber string `json:"registrationNumber,omitempty"`
}

type ListParams struct {
	Page      int
	Size      int
	SortBy    string
	Direction string
}

func (p ListParams) withDefaults() ListParams {
	if p.Size <= 0 {
		p.Size = 10
	}
	if p.SortBy == "" {
		p.SortBy = "createdAt"
	}
	if p.Direction == "" {
		p.Direction = "desc"
	}
	return p
}

// List fetches all grievances (faculty view). The server may answer with a
// page object or a flat array; both are accepted.
func (s *GrievanceService) List(ctx context.Context, params ListParams) ([]model.Grievance, error) {
	params = params.withDefaults()
	query := url.Values{
		"page":      []string{strconv.Itoa(params.Page)},
		"size":      []string{strconv.Itoa(params.Size)},
		"sortBy":    []string{params.SortBy},
		"direction": []string{params.Direction},
	}

	var raw json.RawMessage
	if err := s.c.do(ctx, http.MethodGet, "/grievances", query, nil, &raw); err != nil {
		return nil, err
	}
	return decodeGrievanceList(raw)
}

func decodeGrievanceList(raw json.RawMessage) ([]model.Grievance, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var page struct {
		Content []model.Grievance `json:"content"`
	}
	if err := json.Unmarshal(raw, &page); err == nil && page.Content != nil {
		return page.Content, nil
	}

	var flat []model.Grievance
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("decode grievance list: %w", err)
	}
	return flat, nil
}

// Mine fetches the calling student's own grievances.
func (s *GrievanceService) Mine(ctx context.Context) ([]model.Grievance, error) {
	var grievances []model.Grievance
	err := s.c.do(ctx, http.MethodGet, "/grievances/student/me", nil, nil, &grievances)
	return grievances, err
}

func (s *GrievanceService) Get(ctx context.Context, id int64) (model.Grievance, error) {
	var grievance model.Grievance
	err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/grievances/%d", id), nil, nil, &grievance)
	return grievance, err
}

func (s *GrievanceService) Submit(ctx context.Context, input SubmitInput) (model.Grievance, error) {
	var created model.Grievance
	err := s.c.do(ctx, http.MethodPost, "/grievances", nil, input, &created)
	return created, err
}

// UpdateStatus requests a transition and returns the server's resulting
// grievance. Callers fold that representation back into their list instead
// of assuming the requested status was applied verbatim.
func (s *GrievanceService) UpdateStatus(ctx context.Context, id int64, status model.Status) (model.Grievance, error) {
	query := url.Values{"status": []string{string(status)}}

	var updated model.Grievance
	err := s.c.do(ctx, http.MethodPatch, fmt.Sprintf("/grievances/%d/status", id), query, nil, &updated)
	return updated, err
}

func (s *GrievanceService) Comments(ctx context.Context, id int64) ([]model.Comment, error) {
	var comments []model.Comment
	err := s.c.do(ctx, http.MethodGet, fmt.Sprintf("/grievances/%d/comments", id), nil, nil, &comments)
	return comments, err
}

func (s *GrievanceService) AddComment(ctx context.Context, id int64, body string) (model.Comment, error) {
	payload := map[string]string{"body": body}

	var created model.Comment
	err := s.c.do(ctx, http.MethodPost, fmt.Sprintf("/grievances/%d/comments", id), nil, payload, &created)
	return created, err
}

func (s *GrievanceService) Categories(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	err := s.c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories)
	return categories, err
}
