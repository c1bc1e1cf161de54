package complaints

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/campus-buddy/backend/internal/catalog"
	"github.com/campus-buddy/backend/internal/nlp"
	"github.com/campus-buddy/backend/internal/storage/attachments"
	"github.com/campus-buddy/backend/internal/storage/models"
	"github.com/campus-buddy/backend/internal/storage/sqlite"
)

const student = "student@college.edu"

func newTestService(t *testing.T) *Service {
	t.Helper()

	repo, err := sqlite.NewClient(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	require.NoError(t, repo.InitSchema(context.Background()))

	store, err := attachments.NewLocalStore(t.TempDir(), 1024)
	require.NoError(t, err)

	cat, err := catalog.Default()
	require.NoError(t, err)

	return NewService(repo, store, nlp.NewAnalyzer(nlp.Options{}), cat)
}

func submit(t *testing.T, s *Service, req SubmitRequest) *models.Complaint {
	t.Helper()
	if req.Email == "" {
		req.Email = student
	}
	c, err := s.Submit(context.Background(), req)
	require.NoError(t, err)
	return c
}

func TestSubmit(t *testing.T) {
	s := newTestService(t)

	t.Run("standard general complaint", func(t *testing.T) {
		c := submit(t, s, SubmitRequest{
			Type:        "General",
			Category:    "Library",
			Description: "  Not enough <b>books</b> for the exam  ",
		})
		assert.NotZero(t, c.ID)
		assert.Equal(t, models.TypeGeneral, c.Type)
		assert.Equal(t, "[Standard] Not enough books for the exam", c.Description)
		assert.Equal(t, models.StatusPending, c.Status)
		assert.Equal(t, student, c.Email)
		assert.NotEmpty(t, c.CreatedAt)
	})

	t.Run("urgent keyword", func(t *testing.T) {
		c := submit(t, s, SubmitRequest{Category: "Hostel and Transportation", Description: "Need help asap, the van broke down"})
		assert.True(t, strings.HasPrefix(c.Description, "[Urgent] "))
	})

	t.Run("critical is always urgent", func(t *testing.T) {
		c := submit(t, s, SubmitRequest{Type: "critical", Category: "Mental Health", Description: "Feeling overwhelmed", Anonymous: true})
		assert.Equal(t, models.TypeCritical, c.Type)
		assert.Equal(t, "[Urgent] Feeling overwhelmed", c.Description)
		assert.True(t, c.IsAnonymous)
	})

	t.Run("attachment", func(t *testing.T) {
		c := submit(t, s, SubmitRequest{
			Category:       "Infrastructure and Facilities",
			Description:    "Broken bench",
			AttachmentName: "bench.png",
			Attachment:     []byte("\x89PNG\r\n\x1a\nbench"),
		})
		assert.NotEmpty(t, c.FilePath)
		assert.True(t, strings.HasSuffix(c.FilePath, ".png"))
	})
}

func TestSubmit_Invalid(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  SubmitRequest
	}{
		{"empty description", SubmitRequest{Category: "Library", Description: "   ", Email: student}},
		{"markup only", SubmitRequest{Category: "Library", Description: "<script>x</script>", Email: student}},
		{"unknown type", SubmitRequest{Type: "Minor", Category: "Library", Description: "x", Email: student}},
		{"unknown category", SubmitRequest{Category: "Cafeteria", Description: "x", Email: student}},
		{"category from other table", SubmitRequest{Type: "Critical", Category: "Library", Description: "x", Email: student}},
		{"missing email", SubmitRequest{Category: "Library", Description: "x"}},
		{"bad attachment", SubmitRequest{Category: "Library", Description: "x", Email: student, AttachmentName: "a.exe", Attachment: []byte("MZ")}},
		{"oversized attachment", SubmitRequest{Category: "Library", Description: "x", Email: student, AttachmentName: "a.pdf", Attachment: make([]byte, 2048)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Submit(ctx, tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSubmit_AttachmentsDisabled(t *testing.T) {
	s := newTestService(t)
	s.attachments = nil

	_, err := s.Submit(context.Background(), SubmitRequest{
		Category: "Library", Description: "x", Email: student,
		AttachmentName: "a.png", Attachment: []byte("png"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStatusAndAssign(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	c := submit(t, s, SubmitRequest{Category: "Library", Description: "Study room locked"})

	require.NoError(t, s.UpdateStatus(ctx, c.ID, "in progress"))
	require.NoError(t, s.Assign(ctx, c.ID, "  Library Desk "))

	got, err := s.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, "Library Desk", got.AssignedTo)

	assert.ErrorIs(t, s.UpdateStatus(ctx, c.ID, "Closed"), ErrInvalidInput)
	assert.ErrorIs(t, s.Assign(ctx, c.ID, "   "), ErrInvalidInput)
	assert.ErrorIs(t, s.UpdateStatus(ctx, 999, "Resolved"), ErrNotFound)
	assert.ErrorIs(t, s.Assign(ctx, 999, "Desk"), ErrNotFound)
}

func TestEditAndWithdraw(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	c := submit(t, s, SubmitRequest{Category: "Library", Description: "Books missing"})

	_, err := s.Edit(ctx, c.ID, "other@college.edu", "changed")
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = s.Edit(ctx, c.ID, student, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	edited, err := s.Edit(ctx, c.ID, "STUDENT@college.edu", "Urgent: books missing before exams")
	require.NoError(t, err)
	assert.Equal(t, "[Urgent] Urgent: books missing before exams", edited.Description)

	_, err = s.Edit(ctx, 999, student, "x")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.Withdraw(ctx, c.ID, "other@college.edu"), ErrForbidden)
	require.NoError(t, s.Withdraw(ctx, c.ID, student))

	_, err = s.Get(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Withdraw(ctx, c.ID, student), ErrNotFound)
}

func TestAnnotateAndListAll(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	submit(t, s, SubmitRequest{Category: "Library", Description: "The wifi in the hostel is bad"})
	submit(t, s, SubmitRequest{Type: "Critical", Category: "Safety", Description: "Great staff, happy with the response"})

	all, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// newest first
	assert.Equal(t, "Safety", all[0].Category)
	assert.Equal(t, nlp.PriorityUrgent, all[0].Analysis.Priority)
	assert.Equal(t, nlp.SentimentPositive, all[0].Analysis.Sentiment)

	assert.Equal(t, nlp.PriorityStandard, all[1].Analysis.Priority)
	assert.Equal(t, nlp.SentimentNegative, all[1].Analysis.Sentiment)
	assert.Equal(t, "Connectivity and Hygiene", all[1].Analysis.SuggestedCategory)
	assert.NotContains(t, all[1].Analysis.Keywords, "standard")

	legacy := s.Annotate(models.Complaint{Type: models.TypeGeneral, Description: "please help"})
	assert.Equal(t, nlp.PriorityUrgent, legacy.Analysis.Priority)
}

func TestFilter(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	a := submit(t, s, SubmitRequest{Category: "Library", Description: "a"})
	submit(t, s, SubmitRequest{Category: "Sports and Activities", Description: "b"})
	require.NoError(t, s.UpdateStatus(ctx, a.ID, "Resolved"))

	res, err := s.Filter(ctx, FilterOptions{Category: "All", Status: "All"})
	require.NoError(t, err)
	assert.Len(t, res.Complaints, 2)
	assert.Equal(t, map[string]int{"Pending": 1, "In Progress": 0, "Resolved": 1}, res.Summary)
	assert.Equal(t, "Summary: Pending: 1 | In Progress: 0 | Resolved: 1", res.SummaryLine())
	assert.Contains(t, res.Categories, "Library")

	res, err = s.Filter(ctx, FilterOptions{Category: "Library"})
	require.NoError(t, err)
	require.Len(t, res.Complaints, 1)
	assert.Equal(t, a.ID, res.Complaints[0].ID)

	res, err = s.Filter(ctx, FilterOptions{Status: "resolved"})
	require.NoError(t, err)
	assert.Len(t, res.Complaints, 1)

	today := time.Now()
	res, err = s.Filter(ctx, FilterOptions{From: today, To: today})
	require.NoError(t, err)
	assert.Len(t, res.Complaints, 2)

	res, err = s.Filter(ctx, FilterOptions{From: today.AddDate(0, 0, 1)})
	require.NoError(t, err)
	assert.Empty(t, res.Complaints)

	_, err = s.Filter(ctx, FilterOptions{Status: "Closed"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = s.Filter(ctx, FilterOptions{From: today, To: today.AddDate(0, 0, -1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDashboard(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	empty, err := s.Dashboard(ctx)
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Equal(t, 0, empty.ByStatus["Pending"])

	c := submit(t, s, SubmitRequest{Category: "Library", Description: "Great and happy"})
	submit(t, s, SubmitRequest{Category: "Library", Description: "Bad problem, urgent"})
	submit(t, s, SubmitRequest{Type: "Critical", Category: "Safety", Description: "Threats near gate"})
	require.NoError(t, s.UpdateStatus(ctx, c.ID, "Resolved"))

	d, err := s.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Total)
	assert.Equal(t, 2, d.Urgent)
	assert.Equal(t, map[string]int{"Pending": 2, "In Progress": 0, "Resolved": 1}, d.ByStatus)
	assert.Equal(t, map[string]int{"Library": 2, "Safety": 1}, d.ByCategory)
	assert.Equal(t, 1, d.BySentiment["Positive"])
	assert.Equal(t, 1, d.BySentiment["Negative"])
	assert.Equal(t, 1, d.BySentiment["Neutral"])

	perDay := 0
	for day, n := range d.ByDay {
		_, err := time.Parse("2006-01-02", day)
		assert.NoError(t, err)
		perDay += n
	}
	assert.Equal(t, 3, perDay)
}

func TestNotifications(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	first := submit(t, s, SubmitRequest{Category: "Library", Subcategory: "Study rooms", Description: "a"})
	second := submit(t, s, SubmitRequest{Type: "Critical", Category: "Safety", Description: "b", Anonymous: true})
	submit(t, s, SubmitRequest{Category: "Library", Description: "someone else", Email: "other@college.edu"})
	require.NoError(t, s.UpdateStatus(ctx, first.ID, "In Progress"))

	notes, err := s.Notifications(ctx, student)
	require.NoError(t, err)
	require.Len(t, notes, 2)

	assert.Equal(t, second.ID, notes[0].ComplaintID)
	assert.Equal(t, "Your anonymous complaint [Safety] is Pending", notes[0].Message)
	assert.Equal(t, "Complaint [Library | Study rooms] is In Progress", notes[1].Message)

	none, err := s.Notifications(ctx, "nobody@college.edu")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestExport(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	submit(t, s, SubmitRequest{Category: "Library", Description: "Books, \"old\" ones"})
	submit(t, s, SubmitRequest{Type: "Critical", Category: "Safety", Description: "b", Anonymous: true})

	var buf bytes.Buffer
	n, err := s.ExportCSV(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportColumns, records[0])
	assert.Equal(t, "Safety", records[1][2])
	assert.Equal(t, "1", records[1][5])
	assert.Equal(t, `[Standard] Books, "old" ones`, records[2][4])

	buf.Reset()
	n, err = s.ExportXLSX(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "category", rows[0][2])
	assert.Equal(t, "Safety", rows[1][2])
}
