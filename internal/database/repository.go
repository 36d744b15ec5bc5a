package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-jobpilot-automation/internal/models"
)

// ApplicationStatus tracks a queued job through its lifecycle.
type ApplicationStatus string

const (
	StatusQueued     ApplicationStatus = "QUEUED"
	StatusProcessing ApplicationStatus = "PROCESSING"
	StatusApplied    ApplicationStatus = "APPLIED"
	StatusFailed     ApplicationStatus = "FAILED"
	StatusSkipped    ApplicationStatus = "SKIPPED"
)

// Repository persists scraped listings and application status transitions.
// The orchestrator core never touches it; the caller records outcomes here.
type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	// Hosted poolers (PgBouncer in transaction mode) choke on prepared
	// statements, so the statement cache stays off.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Ping to ensure connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// ---------------- LISTING OPERATIONS ----------------

// SaveListing inserts a scraped listing or refreshes an existing one. The
// conflict target (source, external_id) is the same identity the dedup
// cache uses, so re-scraping a listing never duplicates it.
func (r *Repository) SaveListing(ctx context.Context, job *models.JobListing) error {
	query := `
		INSERT INTO job_listings (source, external_id, title, company, location, experience, salary, url, posted_date, scraped_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source, external_id)
		DO UPDATE SET title = EXCLUDED.title, company = EXCLUDED.company, salary = EXCLUDED.salary, scraped_at = EXCLUDED.scraped_at`

	_, err := r.db.Exec(ctx, query,
		job.Source, job.ExternalID, job.Title, job.Company, job.Location,
		job.Experience, job.Salary, job.URL, job.PostedDate, job.ScrapedAt)
	if err != nil {
		return fmt.Errorf("failed to save listing: %w", err)
	}
	return nil
}

// ---------------- APPLICATION OPERATIONS ----------------

// CreateApplication records a queued apply attempt for a listing and
// returns its id.
func (r *Repository) CreateApplication(ctx context.Context, job models.JobListing) (string, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO applications (id, source, external_id, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (source, external_id)
		DO UPDATE SET status = EXCLUDED.status
		RETURNING id`

	var appID string
	err := r.db.QueryRow(ctx, query, id, job.Source, job.ExternalID, StatusQueued).Scan(&appID)
	if err != nil {
		return "", fmt.Errorf("failed to create application: %w", err)
	}
	return appID, nil
}

// UpdateApplicationStatus moves an application through
// queued -> processing -> applied/failed/skipped.
func (r *Repository) UpdateApplicationStatus(ctx context.Context, appID string, status ApplicationStatus, detail string) error {
	_, err := r.db.Exec(ctx,
		"UPDATE applications SET status = $1, detail = $2, updated_at = now() WHERE id = $3",
		status, detail, appID)
	if err != nil {
		return fmt.Errorf("failed to update application status: %w", err)
	}
	return nil
}

// SaveScreeningAnswers stores the answered question list of one attempt for
// audit, as JSON alongside the application row.
func (r *Repository) SaveScreeningAnswers(ctx context.Context, appID string, questions []models.ScreeningQuestion) error {
	data, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to marshal screening answers: %w", err)
	}
	_, err = r.db.Exec(ctx,
		"UPDATE applications SET screening_answers = $1 WHERE id = $2",
		data, appID)
	if err != nil {
		return fmt.Errorf("failed to save screening answers: %w", err)
	}
	return nil
}
