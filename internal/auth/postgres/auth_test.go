package postgres_test

import (
	"context"
	goerrors "errors"
	"testing"

	"github.com/frahmantamala/ngo-platform/internal/auth"
	"github.com/frahmantamala/ngo-platform/internal/auth/postgres"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestAuthRepository(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Repository Suite")
}

var _ = Describe("Repository", func() {
	var (
		db   *gorm.DB
		repo auth.Repository
		ctx  = context.Background()
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)
		Expect(db.AutoMigrate(&user.User{}, &user.Permission{}, &user.UserPermission{})).To(Succeed())
		repo = postgres.NewRepository(db)
	})

	AfterEach(func() {
		sqlDB, _ := db.DB()
		Expect(sqlDB.Close()).To(Succeed())
	})

	It("loads a user with permissions", func() {
		u := &user.User{Email: "admin@example.org", Name: "Admin", PasswordHash: "hash", IsActive: true}
		Expect(db.Create(u).Error).To(Succeed())
		perm := &user.Permission{Name: "admin"}
		Expect(db.Create(perm).Error).To(Succeed())
		Expect(db.Create(&user.UserPermission{UserID: u.ID, PermissionID: perm.ID}).Error).To(Succeed())

		found, err := repo.GetByEmail(ctx, "ADMIN@example.org")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal(u.ID))

		withPerms, err := repo.GetUserWithPermissions(ctx, u.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(withPerms.IsAdmin()).To(BeTrue())
	})

	It("does not resolve inactive users for a session", func() {
		u := &user.User{Email: "retired@example.org", Name: "Retired", PasswordHash: "hash", IsActive: true}
		Expect(db.Create(u).Error).To(Succeed())
		Expect(db.Model(u).Update("is_active", false).Error).To(Succeed())

		_, err := repo.GetUserWithPermissions(ctx, u.ID)
		Expect(goerrors.Is(err, auth.ErrUserNotFound)).To(BeTrue())

		found, err := repo.GetByEmail(ctx, "retired@example.org")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.IsActive).To(BeFalse())
	})

	It("returns ErrUserNotFound for an unknown email", func() {
		_, err := repo.GetByEmail(ctx, "nobody@example.org")
		Expect(goerrors.Is(err, auth.ErrUserNotFound)).To(BeTrue())
	})
})
