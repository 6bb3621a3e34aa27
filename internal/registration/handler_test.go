package registration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	errors "github.com/frahmantamala/ngo-platform/internal"
	"github.com/frahmantamala/ngo-platform/internal/registration"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type mockService struct {
	linkErr   error
	submitErr error
	lastToken string
	lastDTO   registration.SubmitApplicationDTO
	lastDocs  registration.Documents
	docBody   string
}

func (m *mockService) RequestRegistrationLink(ctx context.Context, email string) (*registration.LinkResult, error) {
	if m.linkErr != nil {
		return nil, m.linkErr
	}
	return &registration.LinkResult{Email: email}, nil
}

func (m *mockService) FormInfo(ctx context.Context, token string) (*registration.FormInfo, error) {
	if token != "good" {
		return nil, registration.ErrTokenInvalid
	}
	return &registration.FormInfo{Email: "ngo@example.org", Categories: registration.Categories}, nil
}

func (m *mockService) SubmitApplication(ctx context.Context, token string, dto registration.SubmitApplicationDTO, docs registration.Documents) (*registration.Application, error) {
	m.lastToken, m.lastDTO, m.lastDocs = token, dto, docs
	if docs.RegistrationDocument != nil {
		buf := new(bytes.Buffer)
		buf.ReadFrom(docs.RegistrationDocument.Content)
		m.docBody = buf.String()
	}
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	return &registration.Application{ID: 1, Name: dto.Name, ContactEmail: "ngo@example.org"}, nil
}

var _ = Describe("Handler", func() {
	var (
		svc     *mockService
		handler *registration.Handler
	)

	BeforeEach(func() {
		svc = &mockService{}
		handler = registration.NewHandler(svc, 1<<20)
	})

	Describe("RequestLink", func() {
		It("answers 202 when a link was sent", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations/link", strings.NewReader(`{"email":"ngo@example.org"}`))
			rec := httptest.NewRecorder()

			handler.RequestLink(rec, req)

			Expect(rec.Code).To(Equal(http.StatusAccepted))
			Expect(rec.Body.String()).To(ContainSubstring("link_sent"))
		})

		It("answers 200 already_pending when an application exists", func() {
			svc.linkErr = registration.ErrApplicationAlreadyPending
			req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations/link", strings.NewReader(`{"email":"ngo@example.org"}`))
			rec := httptest.NewRecorder()

			handler.RequestLink(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("already_pending"))
		})

		It("maps service errors through AppError", func() {
			svc.linkErr = registration.ErrRegistrationLinkNotSent
			req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations/link", strings.NewReader(`{"email":"ngo@example.org"}`))
			rec := httptest.NewRecorder()

			handler.RequestLink(rec, req)

			Expect(rec.Code).To(Equal(http.StatusBadGateway))
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Error.Code).To(Equal(string(errors.ErrCodeRegistrationLinkNotSent)))
		})
	})

	Describe("GetForm", func() {
		It("rejects an invalid token with 401", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/registrations/form?token=bad", nil)
			rec := httptest.NewRecorder()

			handler.GetForm(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("SubmitApplication", func() {
		multipartRequest := func(fields map[string]string, fileField, fileName, content string) *http.Request {
			body := &bytes.Buffer{}
			writer := multipart.NewWriter(body)
			for k, v := range fields {
				Expect(writer.WriteField(k, v)).To(Succeed())
			}
			if fileField != "" {
				part, err := writer.CreateFormFile(fileField, fileName)
				Expect(err).NotTo(HaveOccurred())
				part.Write([]byte(content))
			}
			Expect(writer.Close()).To(Succeed())

			req := httptest.NewRequest(http.MethodPost, "/api/v1/registrations?token=tok", body)
			req.Header.Set("Content-Type", writer.FormDataContentType())
			return req
		}

		It("passes form fields and the document to the service and ignores a posted email", func() {
			req := multipartRequest(map[string]string{
				"name":     "Helping Hands",
				"category": "Health",
				"mission":  "mission",
				"email":    "attacker@example.org",
			}, "registration_document", "cert.pdf", "pdf-bytes")
			rec := httptest.NewRecorder()

			handler.SubmitApplication(rec, req)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(svc.lastToken).To(Equal("tok"))
			Expect(svc.lastDTO.Name).To(Equal("Helping Hands"))
			Expect(svc.lastDocs.RegistrationDocument.Filename).To(Equal("cert.pdf"))
			Expect(svc.lastDocs.FinancialReport).To(BeNil())
			Expect(svc.docBody).To(Equal("pdf-bytes"))
			Expect(rec.Body.String()).To(ContainSubstring("ngo@example.org"))
			Expect(rec.Body.String()).NotTo(ContainSubstring("attacker"))
		})

		It("answers 200 already_pending on a duplicate", func() {
			svc.submitErr = registration.ErrApplicationAlreadyPending
			rec := httptest.NewRecorder()

			handler.SubmitApplication(rec, multipartRequest(map[string]string{"name": "x"}, "", "", ""))

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("already_pending"))
		})

		It("rejects oversized documents", func() {
			rec := httptest.NewRecorder()

			handler.SubmitApplication(rec, multipartRequest(nil, "financial_report", "big.pdf", strings.Repeat("a", (1<<20)+1)))

			Expect(rec.Code).To(Equal(http.StatusRequestEntityTooLarge))
		})
	})
})
