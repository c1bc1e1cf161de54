package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/storage/models"
	"github.com/campus-buddy/backend/pkg/logger"
	"github.com/campus-buddy/backend/pkg/retry"
)

var ErrNotFound = errors.New("complaint not found")

type Client struct {
	db    *sqlx.DB
	retry retry.Config
	now   func() time.Time
}

func NewClient(dbPath string) (*Client, error) {
	if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file:") {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := sqlx.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// one writer; also keeps a :memory: database on a single connection
	db.SetMaxOpenConns(1)

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	_, err = db.Exec("PRAGMA busy_timeout = 5000")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	cfg := retry.DefaultConfig()
	cfg.Retryable = isBusy
	cfg.Logger = logger.GetLogger()

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db, retry: cfg, now: time.Now}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

func isBusy(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
	}
	return false
}

func (c *Client) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS complaints (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL DEFAULT 'General',
		category TEXT NOT NULL,
		subcategory TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL,
		is_anonymous INTEGER NOT NULL DEFAULT 0,
		file_path TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Pending',
		assigned_to TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_complaints_email ON complaints(email);
	CREATE INDEX IF NOT EXISTS idx_complaints_status ON complaints(status);
	CREATE INDEX IF NOT EXISTS idx_complaints_created ON complaints(created_at);
	`

	err := retry.Do(ctx, c.retry, func() error {
		_, err := c.db.ExecContext(ctx, schema)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

const complaintColumns = `id, type, category, subcategory, description, is_anonymous, file_path, email, status, assigned_to, created_at`

// InsertComplaint stores complaint and fills in its ID, plus Status and
// CreatedAt when they are empty.
func (c *Client) InsertComplaint(ctx context.Context, complaint *models.Complaint) error {
	if complaint.Status == "" {
		complaint.Status = models.StatusPending
	}
	if complaint.CreatedAt == "" {
		complaint.CreatedAt = c.now().Format(models.TimeLayout)
	}

	query := `
		INSERT INTO complaints (type, category, subcategory, description, is_anonymous, file_path, email, status, assigned_to, created_at)
		VALUES (:type, :category, :subcategory, :description, :is_anonymous, :file_path, :email, :status, :assigned_to, :created_at)
	`

	var id int64
	err := retry.Do(ctx, c.retry, func() error {
		res, err := c.db.NamedExecContext(ctx, query, complaint)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to insert complaint: %w", err)
	}

	complaint.ID = id

	logger.Debug("Complaint inserted",
		zap.Int64("complaint_id", id),
		zap.String("type", string(complaint.Type)),
		zap.String("category", complaint.Category),
	)
	return nil
}

func (c *Client) GetComplaint(ctx context.Context, id int64) (*models.Complaint, error) {
	var complaint models.Complaint
	err := c.db.GetContext(ctx, &complaint, `SELECT `+complaintColumns+` FROM complaints WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}
	return &complaint, nil
}

func (c *Client) ListComplaints(ctx context.Context) ([]models.Complaint, error) {
	return c.FilterComplaints(ctx, Filter{})
}

func (c *Client) ListComplaintsByEmail(ctx context.Context, email string) ([]models.Complaint, error) {
	complaints := []models.Complaint{}
	err := c.db.SelectContext(ctx, &complaints,
		`SELECT `+complaintColumns+` FROM complaints WHERE email = ? ORDER BY created_at DESC, id DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

// Filter narrows a listing. Zero fields do not filter. From and To are
// calendar days, both inclusive.
type Filter struct {
	Category string
	Status   models.Status
	From     time.Time
	To       time.Time
}

func (c *Client) FilterComplaints(ctx context.Context, f Filter) ([]models.Complaint, error) {
	var (
		where []string
		args  = map[string]interface{}{}
	)

	if f.Category != "" {
		where = append(where, "category = :category")
		args["category"] = f.Category
	}
	if f.Status != "" {
		where = append(where, "status = :status")
		args["status"] = string(f.Status)
	}
	if !f.From.IsZero() {
		where = append(where, "created_at >= :from")
		args["from"] = dayStart(f.From).Format(models.TimeLayout)
	}
	if !f.To.IsZero() {
		where = append(where, "created_at < :to")
		args["to"] = dayStart(f.To).AddDate(0, 0, 1).Format(models.TimeLayout)
	}

	query := `SELECT ` + complaintColumns + ` FROM complaints`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := c.db.NamedQueryContext(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	complaints := []models.Complaint{}
	for rows.Next() {
		var complaint models.Complaint
		if err := rows.StructScan(&complaint); err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, complaint)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate complaints: %w", err)
	}

	return complaints, nil
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (c *Client) UpdateStatus(ctx context.Context, id int64, status models.Status) error {
	return c.update(ctx, "status", `UPDATE complaints SET status = ? WHERE id = ?`, string(status), id)
}

func (c *Client) AssignComplaint(ctx context.Context, id int64, staff string) error {
	return c.update(ctx, "assignment", `UPDATE complaints SET assigned_to = ? WHERE id = ?`, staff, id)
}

func (c *Client) UpdateDescription(ctx context.Context, id int64, description string) error {
	return c.update(ctx, "description", `UPDATE complaints SET description = ? WHERE id = ?`, description, id)
}

func (c *Client) DeleteComplaint(ctx context.Context, id int64) error {
	return c.update(ctx, "deletion", `DELETE FROM complaints WHERE id = ?`, id)
}

// update runs a single-row write and reports ErrNotFound when no row matched.
func (c *Client) update(ctx context.Context, what, query string, args ...interface{}) error {
	var affected int64
	err := retry.Do(ctx, c.retry, func() error {
		res, err := c.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to apply complaint %s: %w", what, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	logger.Debug("Complaint updated", zap.String("change", what))
	return nil
}
