package tracker

import (
	"fmt"
	"strings"
	"time"
)

// Issue is the normalized tracking item consumed by the reconcile and harvest
// passes. NodeID is the opaque global identifier required by the delete
// mutation; Number addresses every REST operation.
type Issue struct {
	Number      int64
	NodeID      string
	Title       string
	State       string
	Labels      []string
	CreatedAt   time.Time
	CommentsURL string
}

// Comment is one issue comment; bodies are scanned for candidate links and
// never mutated.
type Comment struct {
	Body      string
	CreatedAt time.Time
}

// Issue states used in queries.
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// wire types decoded straight from the service before validation.

type wireLabel struct {
	Name string `json:"name"`
}

type wireIssue struct {
	Number      int64       `json:"number"`
	NodeID      string      `json:"node_id"`
	Title       string      `json:"title"`
	State       string      `json:"state"`
	Labels      []wireLabel `json:"labels"`
	CreatedAt   time.Time   `json:"created_at"`
	CommentsURL string      `json:"comments_url"`
	PullRequest *struct{}   `json:"pull_request,omitempty"`
}

type wireComment struct {
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type wireSearchResponse struct {
	TotalCount int64       `json:"total_count"`
	Items      []wireIssue `json:"items"`
}

type wireError struct {
	Message string `json:"message"`
}

// normalize validates the required fields at the boundary and converts the
// wire record into the typed Issue.
func (w wireIssue) normalize() (Issue, error) {
	if w.Number <= 0 {
		return Issue{}, fmt.Errorf("%w: issue without number", ErrMalformedResponse)
	}
	if strings.TrimSpace(w.Title) == "" {
		return Issue{}, fmt.Errorf("%w: issue %d without title", ErrMalformedResponse, w.Number)
	}
	labels := make([]string, 0, len(w.Labels))
	for _, label := range w.Labels {
		if name := strings.TrimSpace(label.Name); name != "" {
			labels = append(labels, name)
		}
	}
	return Issue{
		Number:      w.Number,
		NodeID:      strings.TrimSpace(w.NodeID),
		Title:       w.Title,
		State:       strings.ToLower(strings.TrimSpace(w.State)),
		Labels:      labels,
		CreatedAt:   w.CreatedAt,
		CommentsURL: strings.TrimSpace(w.CommentsURL),
	}, nil
}
