// Package complaints implements the complaint portal: submission by
// students, triage by administrators, and reporting.
package complaints

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/catalog"
	"github.com/campus-buddy/backend/internal/metrics"
	"github.com/campus-buddy/backend/internal/nlp"
	"github.com/campus-buddy/backend/internal/sanitize"
	"github.com/campus-buddy/backend/internal/storage/attachments"
	"github.com/campus-buddy/backend/internal/storage/models"
	"github.com/campus-buddy/backend/internal/storage/sqlite"
	"github.com/campus-buddy/backend/pkg/logger"
)

var (
	ErrNotFound     = errors.New("complaint not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("not allowed")
)

type Repository interface {
	InsertComplaint(ctx context.Context, complaint *models.Complaint) error
	GetComplaint(ctx context.Context, id int64) (*models.Complaint, error)
	ListComplaints(ctx context.Context) ([]models.Complaint, error)
	ListComplaintsByEmail(ctx context.Context, email string) ([]models.Complaint, error)
	FilterComplaints(ctx context.Context, f sqlite.Filter) ([]models.Complaint, error)
	UpdateStatus(ctx context.Context, id int64, status models.Status) error
	AssignComplaint(ctx context.Context, id int64, staff string) error
	UpdateDescription(ctx context.Context, id int64, description string) error
	DeleteComplaint(ctx context.Context, id int64) error
}

type Service struct {
	repo        Repository
	attachments attachments.Store
	analyzer    *nlp.Analyzer
	catalog     *catalog.Catalog
}

// NewService wires the service. attachmentStore may be nil, in which case
// uploads are rejected.
func NewService(repo Repository, attachmentStore attachments.Store, analyzer *nlp.Analyzer, cat *catalog.Catalog) *Service {
	return &Service{
		repo:        repo,
		attachments: attachmentStore,
		analyzer:    analyzer,
		catalog:     cat,
	}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

func mapRepoErr(err error) error {
	if errors.Is(err, sqlite.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

type SubmitRequest struct {
	Type        string
	Category    string
	Subcategory string
	Description string
	Anonymous   bool
	Email       string

	AttachmentName string
	Attachment     []byte
}

func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Complaint, error) {
	ctype, ok := models.ParseComplaintType(req.Type)
	if !ok {
		return nil, invalid("unknown complaint type %q", req.Type)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, invalid("email is required")
	}

	description := sanitize.Text(req.Description)
	if description == "" {
		return nil, invalid("please enter a description for your complaint")
	}

	table := s.catalog.General
	if ctype == models.TypeCritical {
		table = s.catalog.Critical
	}
	category, ok := table.Lookup(strings.TrimSpace(req.Category))
	if !ok {
		return nil, invalid("unknown %s category %q", strings.ToLower(string(ctype)), req.Category)
	}

	priority := s.priorityFor(ctype, description)

	var filePath string
	if len(req.Attachment) > 0 {
		if s.attachments == nil {
			return nil, invalid("attachments are disabled")
		}
		p, err := s.attachments.Save(ctx, req.AttachmentName, req.Attachment)
		if err != nil {
			if errors.Is(err, attachments.ErrTooLarge) || errors.Is(err, attachments.ErrUnsupportedType) || errors.Is(err, attachments.ErrEmpty) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return nil, fmt.Errorf("failed to store attachment: %w", err)
		}
		filePath = p
	}

	complaint := &models.Complaint{
		Type:        ctype,
		Category:    category.Name,
		Subcategory: sanitize.Text(req.Subcategory),
		Description: withPriority(priority, description),
		IsAnonymous: req.Anonymous,
		FilePath:    filePath,
		Email:       email,
		Status:      models.StatusPending,
	}
	if err := s.repo.InsertComplaint(ctx, complaint); err != nil {
		return nil, fmt.Errorf("failed to submit complaint: %w", err)
	}

	metrics.ComplaintsSubmitted.WithLabelValues(string(ctype), string(priority)).Inc()

	logger.Info("Complaint submitted",
		zap.Int64("complaint_id", complaint.ID),
		zap.String("type", string(ctype)),
		zap.String("category", complaint.Category),
		zap.String("priority", string(priority)),
		zap.Bool("anonymous", complaint.IsAnonymous),
	)

	return complaint, nil
}

// Critical complaints are always urgent.
func (s *Service) priorityFor(ctype models.ComplaintType, description string) nlp.Priority {
	if ctype == models.TypeCritical {
		return nlp.PriorityUrgent
	}
	return s.analyzer.Priority(description)
}

func withPriority(p nlp.Priority, description string) string {
	return "[" + string(p) + "] " + description
}

// splitPriority separates a stored "[Urgent] " or "[Standard] " prefix from
// the description text. ok is false when there is no prefix.
func splitPriority(stored string) (nlp.Priority, string, bool) {
	for _, p := range []nlp.Priority{nlp.PriorityUrgent, nlp.PriorityStandard} {
		prefix := "[" + string(p) + "] "
		if strings.HasPrefix(stored, prefix) {
			return p, strings.TrimPrefix(stored, prefix), true
		}
	}
	return "", stored, false
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Complaint, error) {
	c, err := s.repo.GetComplaint(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return c, nil
}

func (s *Service) ListByEmail(ctx context.Context, email string) ([]models.Complaint, error) {
	return s.repo.ListComplaintsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	st, ok := models.ParseStatus(status)
	if !ok {
		return invalid("unknown status %q", status)
	}
	if err := s.repo.UpdateStatus(ctx, id, st); err != nil {
		return mapRepoErr(err)
	}

	metrics.ComplaintStatusChanges.WithLabelValues(string(st)).Inc()
	logger.Info("Complaint status updated", zap.Int64("complaint_id", id), zap.String("status", string(st)))
	return nil
}

func (s *Service) Assign(ctx context.Context, id int64, staff string) error {
	staff = sanitize.Text(staff)
	if staff == "" {
		return invalid("staff name is required")
	}
	if err := s.repo.AssignComplaint(ctx, id, staff); err != nil {
		return mapRepoErr(err)
	}

	logger.Info("Complaint assigned", zap.Int64("complaint_id", id), zap.String("assigned_to", staff))
	return nil
}

// owned loads complaint id and checks that email submitted it.
func (s *Service) owned(ctx context.Context, id int64, email string) (*models.Complaint, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(c.Email, strings.TrimSpace(email)) {
		return nil, ErrForbidden
	}
	return c, nil
}

// Edit replaces the description of a student's own complaint. Priority is
// re-derived from the new text.
func (s *Service) Edit(ctx context.Context, id int64, email, description string) (*models.Complaint, error) {
	c, err := s.owned(ctx, id, email)
	if err != nil {
		return nil, err
	}

	text := sanitize.Text(description)
	if text == "" {
		return nil, invalid("description cannot be empty")
	}

	stored := withPriority(s.priorityFor(c.Type, text), text)
	if err := s.repo.UpdateDescription(ctx, id, stored); err != nil {
		return nil, mapRepoErr(err)
	}
	c.Description = stored

	logger.Info("Complaint edited", zap.Int64("complaint_id", id))
	return c, nil
}

func (s *Service) Withdraw(ctx context.Context, id int64, email string) error {
	if _, err := s.owned(ctx, id, email); err != nil {
		return err
	}
	if err := s.repo.DeleteComplaint(ctx, id); err != nil {
		return mapRepoErr(err)
	}

	logger.Info("Complaint withdrawn", zap.Int64("complaint_id", id))
	return nil
}
