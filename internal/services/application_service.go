package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ashford-college/admissions-api/internal/models"
)

// ApplicationRepository defines the persistence operations the application
// service needs.
type ApplicationRepository interface {
	GetByID(ctx context.Context, id string) (*models.Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]*models.Application, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.Application, error)
	Create(ctx context.Context, app *models.Application) (*models.Application, error)
	Update(ctx context.Context, id string, app *models.Application) (*models.Application, error)
	Delete(ctx context.Context, id string) error
}

// ApplicationService implements the application lifecycle: draft, submit,
// review, decide.
type ApplicationService struct {
	repo   ApplicationRepository
	users  UserRepository
	email  EmailService
	logger *slog.Logger
}

func NewApplicationService(repo ApplicationRepository, users UserRepository, email EmailService, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{
		repo:   repo,
		users:  users,
		email:  email,
		logger: logger,
	}
}

// CreateApplicationRequest carries the applicant-editable fields.
type CreateApplicationRequest struct {
	Program      string   `json:"program" validate:"required,min=2,max=120"`
	EntryTerm    string   `json:"entry_term" validate:"required,min=2,max=40"`
	Essay        string   `json:"essay" validate:"max=20000"`
	DocumentKeys []string `json:"document_keys" validate:"max=20,dive,max=256"`
	Submit       bool     `json:"submit"`
}

// DecisionRequest records an officer's decision.
type DecisionRequest struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected waitlisted"`
	Note   string `json:"note" validate:"max=4000"`
}

// Create files a new application for the applicant, as a draft or submitted
// directly.
func (s *ApplicationService) Create(ctx context.Context, applicantID string, req *CreateApplicationRequest) (*models.Application, error) {
	app := &models.Application{
		ApplicantID:  applicantID,
		Program:      req.Program,
		EntryTerm:    req.EntryTerm,
		Essay:        req.Essay,
		DocumentKeys: req.DocumentKeys,
		Status:       models.ApplicationDraft,
	}
	if req.Submit {
		now := time.Now().UTC()
		app.Status = models.ApplicationSubmitted
		app.SubmittedAt = &now
	}

	created, err := s.repo.Create(ctx, app)
	if err != nil {
		s.logger.Error("failed to create application", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("application created",
		slog.String("application_id", created.ID),
		slog.String("status", created.Status))
	return created, nil
}

// Get fetches one application, enforcing ownership: applicants only see
// their own, staff see any.
func (s *ApplicationService) Get(ctx context.Context, claims *models.SessionClaims, id string) (*models.Application, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get application", slog.String("application_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if claims.Role == models.RoleApplicant && app.ApplicantID != claims.UserID {
		// Hidden, not forbidden: applicants cannot probe other IDs.
		return nil, models.ErrNotFound
	}
	return app, nil
}

// List returns the caller's own applications for applicants, or a
// status-filtered page for staff.
func (s *ApplicationService) List(ctx context.Context, claims *models.SessionClaims, status string, limit, offset int) ([]*models.Application, error) {
	if claims.Role == models.RoleApplicant {
		apps, err := s.repo.ListByApplicant(ctx, claims.UserID)
		if err != nil {
			s.logger.Error("failed to list applications", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		return apps, nil
	}

	if status != "" {
		switch status {
		case models.ApplicationDraft, models.ApplicationSubmitted, models.ApplicationInReview,
			models.ApplicationAccepted, models.ApplicationRejected, models.ApplicationWaitlisted:
		default:
			return nil, models.ErrBadRequest
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	apps, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list applications", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return apps, nil
}

// Update edits an application. Applicants may edit and submit their own
// drafts; officers may pull a submitted application into review.
func (s *ApplicationService) Update(ctx context.Context, claims *models.SessionClaims, id string, req *CreateApplicationRequest) (*models.Application, error) {
	app, err := s.Get(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	switch claims.Role {
	case models.RoleApplicant:
		if app.Status != models.ApplicationDraft {
			return nil, models.ErrConflict
		}
		app.Program = req.Program
		app.EntryTerm = req.EntryTerm
		app.Essay = req.Essay
		app.DocumentKeys = req.DocumentKeys
		if req.Submit {
			now := time.Now().UTC()
			app.Status = models.ApplicationSubmitted
			app.SubmittedAt = &now
		}
	default:
		if app.Status != models.ApplicationSubmitted {
			return nil, models.ErrConflict
		}
		app.Status = models.ApplicationInReview
		app.ReviewerID = &claims.UserID
	}

	updated, err := s.repo.Update(ctx, id, app)
	if err != nil {
		s.logger.Error("failed to update application", slog.String("application_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return updated, nil
}

// Decide records a terminal decision on a submitted or in-review
// application and notifies the applicant.
func (s *ApplicationService) Decide(ctx context.Context, claims *models.SessionClaims, id string, req *DecisionRequest) (*models.Application, error) {
	if !models.DecisionStatus(req.Status) {
		return nil, models.ErrBadRequest
	}

	app, err := s.Get(ctx, claims, id)
	if err != nil {
		return nil, err
	}

	switch app.Status {
	case models.ApplicationSubmitted, models.ApplicationInReview:
	default:
		return nil, models.ErrConflict
	}

	now := time.Now().UTC()
	app.Status = req.Status
	app.ReviewerID = &claims.UserID
	app.DecidedAt = &now
	if req.Note != "" {
		app.DecisionNote = &req.Note
	}

	updated, err := s.repo.Update(ctx, id, app)
	if err != nil {
		s.logger.Error("failed to record decision", slog.String("application_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("decision recorded",
		slog.String("application_id", id),
		slog.String("status", req.Status),
		slog.String("reviewer_id", claims.UserID))

	s.notifyApplicant(ctx, updated)
	return updated, nil
}

// Delete removes a draft. Applicants can only discard their own drafts.
func (s *ApplicationService) Delete(ctx context.Context, claims *models.SessionClaims, id string) error {
	app, err := s.Get(ctx, claims, id)
	if err != nil {
		return err
	}
	if claims.Role == models.RoleApplicant && app.Status != models.ApplicationDraft {
		return models.ErrConflict
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete application", slog.String("application_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// notifyApplicant is best-effort: a failed email never rolls back a
// recorded decision.
func (s *ApplicationService) notifyApplicant(ctx context.Context, app *models.Application) {
	applicant, err := s.users.GetByID(ctx, app.ApplicantID)
	if err != nil {
		s.logger.Error("failed to load applicant for notification",
			slog.String("application_id", app.ID),
			slog.Any("error", err))
		return
	}
	if err := s.email.SendDecisionEmail(ctx, applicant.Email, applicant.Name, app); err != nil {
		s.logger.Error("decision notification failed",
			slog.String("application_id", app.ID),
			slog.Any("error", err))
	}
}
