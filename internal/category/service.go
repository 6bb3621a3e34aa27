package category

import (
	"context"
	"log/slog"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/registration"
)

type RepositoryAPI interface {
	CountActiveByCategory(ctx context.Context) (map[string]int, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// GetAllCategories lists every category an application may choose, in form
// order. Categories without organizations are still listed.
func (s *Service) GetAllCategories(ctx context.Context) ([]Category, error) {
	counts, err := s.repo.CountActiveByCategory(ctx)
	if err != nil {
		s.logger.Error("failed to count organizations by category", "error", err)
		return nil, errors.NewInternalError("Failed to load categories", err)
	}

	categories := make([]Category, 0, len(registration.Categories))
	for _, name := range registration.Categories {
		categories = append(categories, Category{Name: name, OrganizationCount: counts[name]})
	}

	s.logger.Debug("retrieved categories", "count", len(categories))
	return categories, nil
}
