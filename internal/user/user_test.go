package user_test

import (
	"context"
	"encoding/json"
	goerrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	errors "github.com/frahmantamala/ngo-platform/internal"
	userDatamodel "github.com/frahmantamala/ngo-platform/internal/core/datamodel/user"
	"github.com/frahmantamala/ngo-platform/internal/user"
	"github.com/frahmantamala/ngo-platform/internal/user/postgres"
	"github.com/frahmantamala/ngo-platform/pkg/logger"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestUser(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Suite")
}

var _ = Describe("Admin profile", func() {
	var (
		ctx     context.Context
		gormDB  *gorm.DB
		service *user.Service
		admin   *userDatamodel.User
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		gormDB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := gormDB.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(gormDB.AutoMigrate(&userDatamodel.User{}, &userDatamodel.Permission{}, &userDatamodel.UserPermission{})).To(Succeed())

		admin = &userDatamodel.User{Email: "admin@example.org", Name: "Admin", PasswordHash: "hash", IsActive: true}
		Expect(gormDB.Create(admin).Error).To(Succeed())
		for _, name := range []string{"admin", "audit"} {
			perm := &userDatamodel.Permission{Name: name}
			Expect(gormDB.Create(perm).Error).To(Succeed())
			Expect(gormDB.Create(&userDatamodel.UserPermission{UserID: admin.ID, PermissionID: perm.ID}).Error).To(Succeed())
		}

		service = user.NewService(postgres.NewUserRepository(sqlx.NewDb(sqlDB, "sqlite3")), logger.Discard())
	})

	AfterEach(func() {
		sqlDB, err := gormDB.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("GetByID", func() {
		It("returns the profile with sorted permissions", func() {
			profile, err := service.GetByID(ctx, admin.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Email).To(Equal("admin@example.org"))
			Expect(profile.Permissions).To(Equal([]string{"admin", "audit"}))
			Expect(profile.IsAdmin()).To(BeTrue())
		})

		It("returns ErrNotFound for an unknown id", func() {
			_, err := service.GetByID(ctx, 404)

			Expect(goerrors.Is(err, user.ErrNotFound)).To(BeTrue())
		})
	})

	Describe("GetCurrentUser", func() {
		var handler *user.Handler

		BeforeEach(func() {
			handler = user.NewHandler(service)
		})

		It("answers with the profile of the authenticated admin", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/me", nil)
			req = req.WithContext(errors.ContextWithUser(req.Context(), &errors.User{ID: admin.ID, Email: admin.Email}))
			rec := httptest.NewRecorder()

			handler.GetCurrentUser(rec, req)

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body user.Profile
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.ID).To(Equal(admin.ID))
			Expect(body.Permissions).To(ContainElement("admin"))
		})

		It("answers 401 without a user in context", func() {
			rec := httptest.NewRecorder()

			handler.GetCurrentUser(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin/me", nil))

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
