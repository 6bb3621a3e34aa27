package directory

import (
	"context"
	goerrors "errors"
	"log/slog"
	"strings"

	errors "github.com/frahmantamala/ngo-platform/internal"
)

type Repository interface {
	ListActive(ctx context.Context) ([]*Row, error)
	Search(ctx context.Context, q SearchQuery) ([]*Row, error)
	Recent(ctx context.Context, limit int) ([]*Row, error)
	GetActive(ctx context.Context, id int64) (*Row, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// List returns every active organization, biggest donation total first.
func (s *Service) List(ctx context.Context) ([]*Organization, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list organizations", "error", err)
		return nil, errors.NewInternalError("Failed to list organizations", err)
	}
	return fromRows(rows), nil
}

// Search filters active organizations by keyword and category, ordered by
// name. Without any filter it returns the most recently approved ones.
func (s *Service) Search(ctx context.Context, q SearchQuery) ([]*Organization, error) {
	q.Keyword = strings.TrimSpace(q.Keyword)
	q.Category = strings.TrimSpace(q.Category)

	var (
		rows []*Row
		err  error
	)
	if q.IsEmpty() {
		rows, err = s.repo.Recent(ctx, RecentLimit)
	} else {
		rows, err = s.repo.Search(ctx, q)
	}
	if err != nil {
		s.logger.Error("failed to search organizations", "keyword", q.Keyword, "category", q.Category, "error", err)
		return nil, errors.NewInternalError("Failed to search organizations", err)
	}
	return fromRows(rows), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Organization, error) {
	row, err := s.repo.GetActive(ctx, id)
	if err != nil {
		if goerrors.Is(err, ErrOrganizationNotFound) {
			return nil, err
		}
		s.logger.Error("failed to load organization", "organization_id", id, "error", err)
		return nil, errors.NewInternalError("Failed to load organization", err)
	}
	return FromRow(row), nil
}
