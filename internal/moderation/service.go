package moderation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/organization"
	"github.com/frahmantamala/ngo-platform/internal/core/events"
)

// Repository moves applications between the pending, verified and rejected
// tables. Every move is a single transaction.
type Repository interface {
	ListPending(ctx context.Context) ([]*organization.PendingApplication, error)
	ListVerified(ctx context.Context) ([]*organization.VerifiedOrganization, error)
	ListRejected(ctx context.Context) ([]*organization.RejectedApplication, error)
	Approve(ctx context.Context, pendingID int64, approvedAt time.Time) (*organization.VerifiedOrganization, error)
	Reject(ctx context.Context, pendingID, adminID int64, reason string, rejectedAt time.Time) (*organization.RejectedApplication, error)
	Restore(ctx context.Context, rejectedID int64, submittedAt time.Time) (*organization.PendingApplication, error)
}

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) requireAdmin(actor *errors.User, action string) error {
	if actor.IsAdmin() {
		return nil
	}
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	s.logger.Warn("moderation denied: admin required", "action", action, "user_id", actorID)
	return errors.ErrAdminRequired
}

func (s *Service) ListPending(ctx context.Context, actor *errors.User) ([]*PendingApplication, error) {
	if err := s.requireAdmin(actor, "list_pending"); err != nil {
		return nil, err
	}
	apps, err := s.repo.ListPending(ctx)
	if err != nil {
		s.logger.Error("failed to list pending applications", "error", err)
		return nil, errors.NewInternalError("Failed to list pending applications", err)
	}
	return mapSlice(apps, PendingFromDataModel), nil
}

func (s *Service) ListVerified(ctx context.Context, actor *errors.User) ([]*Organization, error) {
	if err := s.requireAdmin(actor, "list_verified"); err != nil {
		return nil, err
	}
	orgs, err := s.repo.ListVerified(ctx)
	if err != nil {
		s.logger.Error("failed to list verified organizations", "error", err)
		return nil, errors.NewInternalError("Failed to list verified organizations", err)
	}
	return mapSlice(orgs, OrganizationFromDataModel), nil
}

func (s *Service) ListRejected(ctx context.Context, actor *errors.User) ([]*RejectedApplication, error) {
	if err := s.requireAdmin(actor, "list_rejected"); err != nil {
		return nil, err
	}
	apps, err := s.repo.ListRejected(ctx)
	if err != nil {
		s.logger.Error("failed to list rejected applications", "error", err)
		return nil, errors.NewInternalError("Failed to list rejected applications", err)
	}
	return mapSlice(apps, RejectedFromDataModel), nil
}

func (s *Service) Approve(ctx context.Context, actor *errors.User, pendingID int64) (*Organization, error) {
	if err := s.requireAdmin(actor, "approve"); err != nil {
		return nil, err
	}

	org, err := s.repo.Approve(ctx, pendingID, s.now().UTC())
	if err != nil {
		return nil, s.repositoryError("approve", pendingID, err)
	}

	s.logger.Info("application approved",
		"application_id", pendingID,
		"organization_id", org.ID,
		"admin_id", actor.ID)

	s.publish(ctx, events.NewApplicationApprovedEvent(org.ID, org.Name, org.ContactEmail, actor.ID))
	return OrganizationFromDataModel(org), nil
}

func (s *Service) Reject(ctx context.Context, actor *errors.User, pendingID int64, reason string) (*RejectedApplication, error) {
	if err := s.requireAdmin(actor, "reject"); err != nil {
		return nil, err
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = DefaultRejectionReason
	}

	rejected, err := s.repo.Reject(ctx, pendingID, actor.ID, reason, s.now().UTC())
	if err != nil {
		return nil, s.repositoryError("reject", pendingID, err)
	}

	s.logger.Info("application rejected",
		"application_id", pendingID,
		"rejected_id", rejected.ID,
		"admin_id", actor.ID)

	s.publish(ctx, events.NewApplicationRejectedEvent(rejected.ID, rejected.Name, rejected.ContactEmail, reason, actor.ID))
	return RejectedFromDataModel(rejected), nil
}

func (s *Service) Restore(ctx context.Context, actor *errors.User, rejectedID int64) (*PendingApplication, error) {
	if err := s.requireAdmin(actor, "restore"); err != nil {
		return nil, err
	}

	pending, err := s.repo.Restore(ctx, rejectedID, s.now().UTC())
	if err != nil {
		return nil, s.repositoryError("restore", rejectedID, err)
	}

	s.logger.Info("application restored to pending",
		"rejected_id", rejectedID,
		"application_id", pending.ID,
		"admin_id", actor.ID)
	return PendingFromDataModel(pending), nil
}

func (s *Service) repositoryError(action string, id int64, err error) error {
	if appErr, ok := errors.IsAppError(err); ok {
		s.logger.Warn("moderation failed", "action", action, "id", id, "code", appErr.Code, "error", err)
		return err
	}
	s.logger.Error("moderation failed", "action", action, "id", id, "error", err)
	return errors.NewInternalError("Failed to "+action+" application", err)
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("failed to publish moderation event", "error", err, "event_type", event.EventType())
	}
}
