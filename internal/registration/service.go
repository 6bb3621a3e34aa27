package registration

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/core/common/validation"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/organization"
	"github.com/frahmantamala/ngo-platform/internal/core/token"
	"github.com/frahmantamala/ngo-platform/internal/notification"
	"github.com/frahmantamala/ngo-platform/internal/storage"
	"github.com/golang-jwt/jwt/v5"
)

type Repository interface {
	HasPending(ctx context.Context, email string) (bool, error)
	CreatePending(ctx context.Context, app *organization.PendingApplication) error
}

type Service struct {
	repo     Repository
	store    storage.DocumentStore
	notifier notification.Notifier
	signer   *token.Signer
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(repo Repository, store storage.DocumentStore, notifier notification.Notifier, signer *token.Signer, baseURL string, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		store:    store,
		notifier: notifier,
		signer:   signer,
		baseURL:  strings.TrimRight(baseURL, "/"),
		logger:   logger,
		now:      time.Now,
	}
}

// RequestRegistrationLink mails a signed form link to email unless an
// application for it is already pending. No record is created.
func (s *Service) RequestRegistrationLink(ctx context.Context, email string) (*LinkResult, error) {
	if appErr := (RequestLinkDTO{Email: email}).Validate(); appErr != nil {
		s.logger.Warn("registration link request rejected", "error", appErr)
		return nil, appErr
	}
	email = validation.NormalizeEmail(email)

	pending, err := s.repo.HasPending(ctx, email)
	if err != nil {
		s.logger.Error("failed to check pending applications", "error", err)
		return nil, errors.NewInternalError("Failed to process registration request", err)
	}
	if pending {
		s.logger.Info("registration link skipped, application already pending")
		return nil, ErrApplicationAlreadyPending
	}

	claims := s.signer.Registered(email)
	signed, err := s.signer.Sign(claims)
	if err != nil {
		s.logger.Error("failed to sign registration token", "error", err)
		return nil, errors.NewInternalError("Failed to process registration request", err)
	}

	link := s.baseURL + FormPath + "?token=" + url.QueryEscape(signed)
	msg := notification.Message{
		To:       email,
		Subject:  "Complete your organization registration",
		Template: notification.TemplateRegistrationLink,
		Data: map[string]any{
			"Link":      link,
			"ExpiresIn": humanDuration(s.signer.TTL()),
		},
	}
	if err := s.notifier.SendNow(ctx, msg); err != nil {
		s.logger.Error("failed to send registration link", "error", err)
		return nil, ErrRegistrationLinkNotSent.WithCause(err)
	}

	s.logger.Info("registration link sent", "expires_at", claims.ExpiresAt.Time)
	return &LinkResult{Email: email, ExpiresAt: claims.ExpiresAt.Time}, nil
}

// VerifyToken returns the email a registration token was issued for.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	if err := s.signer.Parse(tokenString, &claims); err != nil {
		if goerrors.Is(err, token.ErrExpired) {
			return "", ErrTokenExpired
		}
		s.logger.Warn("registration token rejected", "error", err)
		return "", ErrTokenInvalid
	}
	if claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

func (s *Service) FormInfo(ctx context.Context, tokenString string) (*FormInfo, error) {
	email, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}
	return &FormInfo{Email: email, Categories: Categories}, nil
}

func (s *Service) SubmitApplication(ctx context.Context, tokenString string, dto SubmitApplicationDTO, docs Documents) (*Application, error) {
	email, err := s.VerifyToken(tokenString)
	if err != nil {
		return nil, err
	}

	if appErr := dto.Validate(); appErr != nil {
		s.logger.Warn("application validation failed", "error", appErr)
		return nil, appErr
	}

	pending, err := s.repo.HasPending(ctx, email)
	if err != nil {
		s.logger.Error("failed to check pending applications", "error", err)
		return nil, errors.NewInternalError("Failed to submit application", err)
	}
	if pending {
		return nil, ErrApplicationAlreadyPending
	}

	registrationPath := s.saveDocument(ctx, "registration_document", docs.RegistrationDocument)
	if registrationPath == nil {
		placeholder := organization.RegistrationDocumentPlaceholder
		registrationPath = &placeholder
	}
	financialPath := s.saveDocument(ctx, "financial_report", docs.FinancialReport)

	app := &organization.PendingApplication{
		Name:                     strings.TrimSpace(dto.Name),
		Category:                 dto.Category,
		Mission:                  strings.TrimSpace(dto.Mission),
		Website:                  dto.website(),
		ContactEmail:             email,
		RegistrationDocumentPath: registrationPath,
		FinancialReportPath:      financialPath,
		SubmittedAt:              s.now().UTC(),
	}

	if err := s.repo.CreatePending(ctx, app); err != nil {
		if goerrors.Is(err, ErrApplicationAlreadyPending) {
			s.logger.Warn("concurrent application for the same email refused", "category", app.Category)
			return nil, ErrApplicationAlreadyPending
		}
		s.logger.Error("failed to create pending application", "error", err)
		return nil, errors.NewInternalError("Failed to submit application", err)
	}

	s.logger.Info("application submitted", "application_id", app.ID, "category", app.Category)
	return FromDataModel(app), nil
}

// saveDocument stores an optional upload. Storage failures are logged and
// reported as a missing document rather than failing the submission.
func (s *Service) saveDocument(ctx context.Context, field string, upload *storage.Upload) *string {
	if upload == nil || upload.Content == nil {
		return nil
	}

	path, err := s.store.Save(ctx, *upload)
	if err != nil {
		storageErr := errors.NewInternalError("Failed to store document", err)
		storageErr.Code = errors.ErrCodeStorageFailed
		s.logger.Error("document storage failed", "error", storageErr, "field", field)
		return nil
	}
	return &path
}

func humanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		hours := int(d / time.Hour)
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
