package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/frahmantamala/motors-dealership/internal/account"
	accountPostgres "github.com/frahmantamala/motors-dealership/internal/account/postgres"
	"github.com/frahmantamala/motors-dealership/internal/auth"
	"github.com/frahmantamala/motors-dealership/internal/inventory"
	inventoryPostgres "github.com/frahmantamala/motors-dealership/internal/inventory/postgres"
	"github.com/frahmantamala/motors-dealership/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	adminFirstName string
	adminLastName  string
	adminEmail     string
	adminPassword  string
	adminRole      string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create a staff account",
	Long:  `Create an Admin or Employee account. Registration through the site only ever creates clients.`,
	Run: func(cmd *cobra.Command, args []string) {
		role, ok := auth.ParseRole(adminRole)
		if !ok || role == auth.RoleClient {
			log.Fatalf("role must be %s or %s", auth.RoleAdmin, auth.RoleEmployee)
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := logger.Init(logger.Options{Env: cfg.App.Env, Level: cfg.Observability.Logging.Level})

		db, gormDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		svc := account.NewService(
			accountPostgres.NewAccountRepository(gormDB),
			newHasher(cfg.Security.BCryptCost),
			nil,
			nil,
			lg,
		)
		acct, err := svc.CreateAccount(context.Background(), account.RegisterDTO{
			FirstName: adminFirstName,
			LastName:  adminLastName,
			Email:     adminEmail,
			Password:  adminPassword,
		}, role)
		if err != nil {
			log.Fatalf("failed to create account: %v", err)
		}

		fmt.Printf("Created %s account %d for %s\n", acct.Role, acct.ID, acct.Email)
	},
}

var fixImagesCmd = &cobra.Command{
	Use:   "fix-images",
	Short: "Collapse doubled /vehicles/vehicles/ image paths",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		lg := logger.Init(logger.Options{Env: cfg.App.Env, Level: cfg.Observability.Logging.Level})

		db, gormDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		svc := inventory.NewService(
			inventoryPostgres.NewInventoryRepository(gormDB),
			inventoryPostgres.NewImagePathRepair(db),
			nil,
			lg,
		)
		n, err := svc.NormalizeImagePaths(context.Background())
		if err != nil {
			log.Fatalf("failed to fix image paths: %v", err)
		}

		fmt.Printf("Updated %d vehicles\n", n)
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFirstName, "first-name", "Admin", "first name")
	createAdminCmd.Flags().StringVar(&adminLastName, "last-name", "User", "last name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password, at least 10 characters with an uppercase letter, a number and a special character")
	createAdminCmd.Flags().StringVar(&adminRole, "role", string(auth.RoleAdmin), "Admin or Employee")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
}
