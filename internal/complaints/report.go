package complaints

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/campus-buddy/backend/internal/metrics"
	"github.com/campus-buddy/backend/internal/nlp"
	"github.com/campus-buddy/backend/internal/storage/models"
	"github.com/campus-buddy/backend/internal/storage/sqlite"
)

// Annotated is a complaint with advisory classification for triage.
type Annotated struct {
	models.Complaint
	Analysis nlp.Result `json:"analysis"`
}

// Annotate classifies the complaint text. The stored priority wins over a
// recomputed one, and the suggestion considers every category.
func (s *Service) Annotate(c models.Complaint) Annotated {
	priority, text, ok := splitPriority(c.Description)

	result := s.analyzer.Classify(text, s.catalog.All())
	if ok {
		result.Priority = priority
	}

	metrics.Classifications.WithLabelValues(string(result.Sentiment)).Inc()
	return Annotated{Complaint: c, Analysis: result}
}

func (s *Service) annotateAll(list []models.Complaint) []Annotated {
	out := make([]Annotated, 0, len(list))
	for _, c := range list {
		out = append(out, s.Annotate(c))
	}
	return out
}

// ListAll returns every complaint, newest first, annotated.
func (s *Service) ListAll(ctx context.Context) ([]Annotated, error) {
	list, err := s.repo.ListComplaints(ctx)
	if err != nil {
		return nil, err
	}
	return s.annotateAll(list), nil
}

// FilterOptions uses "All" or an empty string for no constraint.
type FilterOptions struct {
	Category string
	Status   string
	From     time.Time
	To       time.Time
}

type FilterResult struct {
	Complaints []Annotated    `json:"complaints"`
	Summary    map[string]int `json:"summary"`
	Categories []string       `json:"categories"`
}

func noFilter(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, "All")
}

func (s *Service) Filter(ctx context.Context, opts FilterOptions) (*FilterResult, error) {
	var f sqlite.Filter

	if !noFilter(opts.Category) {
		f.Category = strings.TrimSpace(opts.Category)
	}
	if !noFilter(opts.Status) {
		st, ok := models.ParseStatus(opts.Status)
		if !ok {
			return nil, invalid("unknown status %q", opts.Status)
		}
		f.Status = st
	}
	if !opts.From.IsZero() && !opts.To.IsZero() && opts.To.Before(opts.From) {
		return nil, invalid("date range ends before it starts")
	}
	f.From, f.To = opts.From, opts.To

	list, err := s.repo.FilterComplaints(ctx, f)
	if err != nil {
		return nil, err
	}

	summary := statusCounts()
	for _, c := range list {
		summary[string(c.Status)]++
	}

	return &FilterResult{
		Complaints: s.annotateAll(list),
		Summary:    summary,
		Categories: s.catalog.All().Names(),
	}, nil
}

// SummaryLine renders the status summary the way the admin panel shows it.
func (r *FilterResult) SummaryLine() string {
	return fmt.Sprintf("Summary: Pending: %d | In Progress: %d | Resolved: %d",
		r.Summary[string(models.StatusPending)],
		r.Summary[string(models.StatusInProgress)],
		r.Summary[string(models.StatusResolved)])
}

func statusCounts() map[string]int {
	m := make(map[string]int, len(models.Statuses))
	for _, st := range models.Statuses {
		m[string(st)] = 0
	}
	return m
}

type Dashboard struct {
	Total       int            `json:"total"`
	Urgent      int            `json:"urgent"`
	ByStatus    map[string]int `json:"by_status"`
	ByCategory  map[string]int `json:"by_category"`
	BySentiment map[string]int `json:"by_sentiment"`
	// ByDay counts submissions per calendar day, keyed YYYY-MM-DD.
	ByDay map[string]int `json:"by_day"`
}

func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	list, err := s.repo.ListComplaints(ctx)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Total:      len(list),
		ByStatus:   statusCounts(),
		ByCategory: make(map[string]int),
		BySentiment: map[string]int{
			string(nlp.SentimentPositive): 0,
			string(nlp.SentimentNeutral):  0,
			string(nlp.SentimentNegative): 0,
		},
		ByDay: make(map[string]int),
	}

	for _, c := range list {
		d.ByStatus[string(c.Status)]++
		d.ByCategory[c.Category]++
		if created := c.Created(); !created.IsZero() {
			d.ByDay[created.Format("2006-01-02")]++
		}

		priority, text, ok := splitPriority(c.Description)
		if !ok {
			priority = s.priorityFor(c.Type, text)
		}
		if priority == nlp.PriorityUrgent {
			d.Urgent++
		}
		d.BySentiment[string(s.analyzer.Sentiment(text))]++
	}

	return d, nil
}

type Notification struct {
	ComplaintID int64         `json:"complaint_id"`
	Status      models.Status `json:"status"`
	Message     string        `json:"message"`
}

// Notifications lists status messages for a student's complaints, newest
// first.
func (s *Service) Notifications(ctx context.Context, email string) ([]Notification, error) {
	list, err := s.ListByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	out := make([]Notification, 0, len(list))
	for _, c := range list {
		out = append(out, Notification{
			ComplaintID: c.ID,
			Status:      c.Status,
			Message:     notificationText(c),
		})
	}
	return out, nil
}

func notificationText(c models.Complaint) string {
	label := c.Category
	if c.Subcategory != "" {
		label += " | " + c.Subcategory
	}
	if c.IsAnonymous {
		return fmt.Sprintf("Your anonymous complaint [%s] is %s", label, c.Status)
	}
	return fmt.Sprintf("Complaint [%s] is %s", label, c.Status)
}
