package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/ashford-college/admissions-api/internal/database"
	"github.com/ashford-college/admissions-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type ApplicationRepository struct {
	pool *pgxpool.Pool
}

func NewApplicationRepository(db *database.DB) *ApplicationRepository {
	return &ApplicationRepository{pool: db.Pool}
}

const applicationColumns = `id, applicant_id, program, entry_term, essay, document_keys, status, reviewer_id, decision_note, submitted_at, decided_at, created_at, updated_at`

func scanApplicationRow(scanner rowScanner) (*models.Application, error) {
	var app models.Application

	err := scanner.Scan(
		&app.ID, &app.ApplicantID, &app.Program, &app.EntryTerm, &app.Essay,
		pq.Array(&app.DocumentKeys),
		&app.Status, &app.ReviewerID, &app.DecisionNote,
		&app.SubmittedAt, &app.DecidedAt,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &app, nil
}

func scanApplicationRows(rows pgx.Rows) ([]*models.Application, error) {
	defer rows.Close()

	apps := make([]*models.Application, 0)
	for rows.Next() {
		app, err := scanApplicationRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, app)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return apps, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id string) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`
	return scanApplicationRow(r.pool.QueryRow(ctx, query, id))
}

func (r *ApplicationRepository) ListByApplicant(ctx context.Context, applicantID string) ([]*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE applicant_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, applicantID)
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	return scanApplicationRows(rows)
}

// List returns applications for review, optionally filtered by status.
func (r *ApplicationRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Application, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if status != "" {
		query := `SELECT ` + applicationColumns + ` FROM applications WHERE status = $1 ORDER BY submitted_at NULLS LAST, created_at LIMIT $2 OFFSET $3`
		rows, err = r.pool.Query(ctx, query, status, limit, offset)
	} else {
		query := `SELECT ` + applicationColumns + ` FROM applications ORDER BY submitted_at NULLS LAST, created_at LIMIT $1 OFFSET $2`
		rows, err = r.pool.Query(ctx, query, limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query applications: %w", err)
	}
	return scanApplicationRows(rows)
}

func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) (*models.Application, error) {
	app.ID = uuid.New().String()

	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = models.ApplicationDraft
	}

	query := `
		INSERT INTO applications (id, applicant_id, program, entry_term, essay, document_keys, status, submitted_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + applicationColumns

	return scanApplicationRow(r.pool.QueryRow(ctx, query,
		app.ID, app.ApplicantID, app.Program, app.EntryTerm, app.Essay,
		pq.Array(app.DocumentKeys), app.Status, app.SubmittedAt,
		app.CreatedAt, app.UpdatedAt,
	))
}

func (r *ApplicationRepository) Update(ctx context.Context, id string, app *models.Application) (*models.Application, error) {
	app.UpdatedAt = time.Now()

	query := `
		UPDATE applications
		SET program = $1, entry_term = $2, essay = $3, document_keys = $4,
		    status = $5, reviewer_id = $6, decision_note = $7,
		    submitted_at = $8, decided_at = $9, updated_at = $10
		WHERE id = $11
		RETURNING ` + applicationColumns

	return scanApplicationRow(r.pool.QueryRow(ctx, query,
		app.Program, app.EntryTerm, app.Essay, pq.Array(app.DocumentKeys),
		app.Status, app.ReviewerID, app.DecisionNote,
		app.SubmittedAt, app.DecidedAt, app.UpdatedAt, id,
	))
}

func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
