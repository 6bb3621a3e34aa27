package user

import (
	"context"
	goerrors "errors"
	"log/slog"

	errors "github.com/frahmantamala/ngo-platform/internal"
	userDatamodel "github.com/frahmantamala/ngo-platform/internal/core/datamodel/user"
)

type Repository interface {
	GetByID(ctx context.Context, userID int64) (*userDatamodel.User, error)
	GetPermissions(ctx context.Context, userID int64) ([]string, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetByID(ctx context.Context, userID int64) (*Profile, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if goerrors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to get user by id", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("Failed to load user", err)
	}

	perms, err := s.repo.GetPermissions(ctx, userID)
	if err != nil {
		s.logger.Error("failed to get user permissions", "user_id", userID, "error", err)
		return nil, errors.NewInternalError("Failed to load user permissions", err)
	}

	return FromDataModel(u, perms), nil
}
