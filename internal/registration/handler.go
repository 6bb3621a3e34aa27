package registration

import (
	"context"
	goerrors "errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/frahmantamala/ngo-platform/internal/storage"
	"github.com/frahmantamala/ngo-platform/internal/transport"
	"github.com/frahmantamala/ngo-platform/pkg/logger"
)

const defaultMaxUploadBytes = 10 << 20

type ServiceAPI interface {
	RequestRegistrationLink(ctx context.Context, email string) (*LinkResult, error)
	FormInfo(ctx context.Context, token string) (*FormInfo, error)
	SubmitApplication(ctx context.Context, token string, dto SubmitApplicationDTO, docs Documents) (*Application, error)
}

type Handler struct {
	*transport.BaseHandler
	Service        ServiceAPI
	MaxUploadBytes int64
}

func NewHandler(service ServiceAPI, maxUploadBytes int64) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		BaseHandler:    transport.NewBaseHandler(lg),
		Service:        service,
		MaxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) RequestLink(w http.ResponseWriter, r *http.Request) {
	var dto RequestLinkDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.Logger.Error("RequestLink: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := h.Service.RequestRegistrationLink(r.Context(), dto.Email)
	if goerrors.Is(err, ErrApplicationAlreadyPending) {
		h.WriteJSON(w, http.StatusOK, map[string]string{"status": "already_pending"})
		return
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "link_sent"})
}

func (h *Handler) GetForm(w http.ResponseWriter, r *http.Request) {
	info, err := h.Service.FormInfo(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, info)
}

func (h *Handler) SubmitApplication(w http.ResponseWriter, r *http.Request) {
	// two documents plus the text fields
	r.Body = http.MaxBytesReader(w, r.Body, 2*h.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		h.Logger.Error("SubmitApplication: invalid multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if goerrors.As(err, &tooLarge) {
			h.WriteError(w, http.StatusRequestEntityTooLarge, "uploaded files are too large")
			return
		}
		h.WriteError(w, http.StatusBadRequest, "invalid form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	dto := SubmitApplicationDTO{
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
		Mission:  r.FormValue("mission"),
		Website:  r.FormValue("website"),
	}

	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	var docs Documents
	for field, dst := range map[string]**storage.Upload{
		"registration_document": &docs.RegistrationDocument,
		"financial_report":      &docs.FinancialReport,
	} {
		upload, file, err := h.formFile(r, field)
		if err != nil {
			h.WriteError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		if file != nil {
			opened = append(opened, file)
		}
		*dst = upload
	}

	app, err := h.Service.SubmitApplication(r.Context(), r.URL.Query().Get("token"), dto, docs)
	if goerrors.Is(err, ErrApplicationAlreadyPending) {
		h.WriteJSON(w, http.StatusOK, map[string]string{"status": "already_pending"})
		return
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("SubmitApplication: application created", "application_id", app.ID)
	h.WriteJSON(w, http.StatusCreated, app)
}

var errFileTooLarge = goerrors.New("uploaded file is too large")

func (h *Handler) formFile(r *http.Request, field string) (*storage.Upload, multipart.File, error) {
	files := r.MultipartForm.File[field]
	if len(files) == 0 || files[0].Filename == "" {
		return nil, nil, nil
	}
	header := files[0]
	if header.Size > h.MaxUploadBytes {
		return nil, nil, errFileTooLarge
	}

	file, err := header.Open()
	if err != nil {
		h.Logger.Warn("could not open uploaded file", "error", err, "field", field)
		return nil, nil, nil
	}
	return &storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     file,
	}, file, nil
}
