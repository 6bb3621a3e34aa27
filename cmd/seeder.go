package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/ngo-platform/internal/auth"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/organization"
	"github.com/frahmantamala/ngo-platform/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	seedAdminEmail    string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with an admin account and sample verified organizations for development.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := clearSeedData(db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing data")
		}

		hash, err := auth.HashPassword(seedAdminPassword, cfg.Security.BCryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}

		admin, err := seedAdmin(db, seedAdminEmail, hash)
		if err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
		fmt.Println("Admin user ready:", admin.Email)

		n, err := seedOrganizations(db)
		if err != nil {
			log.Fatalf("failed to seed organizations: %v", err)
		}
		fmt.Printf("Seeded %d verified organizations\n", n)
	},
}

func seedAdmin(db *gorm.DB, email, passwordHash string) (*user.User, error) {
	var admin user.User
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(user.User{Email: email}).
			Attrs(user.User{Name: "Platform Admin", PasswordHash: passwordHash, IsActive: true}).
			FirstOrCreate(&admin).Error; err != nil {
			return err
		}

		perm := user.Permission{Name: "admin", Description: "full administrator"}
		if err := tx.Where(user.Permission{Name: perm.Name}).FirstOrCreate(&perm).Error; err != nil {
			return err
		}

		grant := user.UserPermission{UserID: admin.ID, PermissionID: perm.ID}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error
	})
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

func seedOrganizations(db *gorm.DB) (int, error) {
	website := func(s string) *string { return &s }
	now := time.Now().UTC()

	orgs := []organization.VerifiedOrganization{
		{
			Name:         "Clean Water Collective",
			Category:     "Environment",
			Mission:      "Building rainwater harvesting systems for rural schools.",
			Website:      website("https://cleanwater.example.org"),
			ContactEmail: "hello@cleanwater.example.org",
			ContactPhone: "+62 21 555 0101",
			Location:     "Yogyakarta",
			ApprovedAt:   now.Add(-72 * time.Hour),
		},
		{
			Name:         "Open Library Project",
			Category:     "Education",
			Mission:      "Mobile libraries and reading clubs for children.",
			ContactEmail: "team@openlibrary.example.org",
			Location:     "Bandung",
			ApprovedAt:   now.Add(-48 * time.Hour),
		},
		{
			Name:         "Harbor Animal Rescue",
			Category:     "Animal Welfare",
			Mission:      "Rescue, treatment and adoption of stray animals.",
			Website:      website("https://harbor.example.org"),
			ContactEmail: "care@harbor.example.org",
			Location:     "Surabaya",
			ApprovedAt:   now.Add(-24 * time.Hour),
		},
	}

	created := 0
	for i := range orgs {
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&orgs[i])
		if res.Error != nil {
			return created, fmt.Errorf("insert %s: %w", orgs[i].Name, res.Error)
		}
		created += int(res.RowsAffected)
	}
	return created, nil
}

// clearSeedData removes everything except migrations, children first.
func clearSeedData(db *gorm.DB) error {
	tables := []string{
		"successful_payments",
		"failed_payments",
		"payments",
		"verified_organizations",
		"pending_applications",
		"rejected_applications",
		"user_permissions",
		"permissions",
		"users",
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, t := range tables {
			if err := tx.Exec("DELETE FROM " + t).Error; err != nil {
				return fmt.Errorf("clear %s: %w", t, err)
			}
		}
		return nil
	})
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminEmail, "admin-email", "admin@ngo-platform.local", "email of the seeded admin")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "password", "password of the seeded admin")
}
