package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/frahmantamala/motors-dealership/internal"
	inventoryDatamodel "github.com/frahmantamala/motors-dealership/internal/core/datamodel/inventory"
	"github.com/frahmantamala/motors-dealership/internal/inventory"
	inventoryPostgres "github.com/frahmantamala/motors-dealership/internal/inventory/postgres"
	"github.com/frahmantamala/motors-dealership/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var clearData bool

var seedClassifications = []string{"Custom", "Sedan", "Sport", "SUV", "Truck"}

var seedVehicles = []struct {
	classification string
	vehicle        inventory.AddVehicleDTO
}{
	{"Custom", inventory.AddVehicleDTO{Make: "DMC", Model: "Delorean", Year: 1981, Description: "Stainless steel gull-wing coupe, time circuits not included.", Price: 65000, Miles: 53221, Color: "Silver"}},
	{"Custom", inventory.AddVehicleDTO{Make: "Batmobile", Model: "Custom", Year: 2007, Description: "Armored one-off with a very quiet engine for night driving.", Price: 65000, Miles: 29887, Color: "Black"}},
	{"Sedan", inventory.AddVehicleDTO{Make: "Ford", Model: "Crown Victoria", Year: 2013, Description: "Full size sedan with room for the whole family.", Price: 10000, Miles: 108247, Color: "White"}},
	{"Sport", inventory.AddVehicleDTO{Make: "Chevy", Model: "Camaro", Year: 2018, Description: "V8 coupe that handles as well as it accelerates.", Price: 25000, Miles: 101222, Color: "Yellow"}},
	{"Sport", inventory.AddVehicleDTO{Make: "Lamborghini", Model: "Adventador", Year: 2016, Description: "Twelve cylinders of mid-engine Italian exotica.", Price: 417650, Miles: 71632, Color: "Blue"}},
	{"SUV", inventory.AddVehicleDTO{Make: "Jeep", Model: "Wrangler", Year: 2019, Description: "Removable top and doors, built for the trail.", Price: 28045, Miles: 41205, Color: "Yellow"}},
	{"Truck", inventory.AddVehicleDTO{Make: "Monster", Model: "Truck", Year: 1995, Description: "Crushes cars for a living and still runs great.", Price: 150000, Miles: 3998, Color: "Purple"}},
	{"Truck", inventory.AddVehicleDTO{Make: "Ford", Model: "F150", Year: 2017, Description: "Americas best selling pickup in a crew cab trim.", Price: 30000, Miles: 18725, Color: "White"}},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with the default classifications and a sample inventory for development.`,
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

		if clearData {
			if err := clearInventory(gormDB); err != nil {
				log.Fatalf("failed to clear inventory: %v", err)
			}
			fmt.Println("Cleared existing inventory")
		}

		svc := inventory.NewService(inventoryPostgres.NewInventoryRepository(gormDB), nil, nil, lg)
		if err := seedInventory(context.Background(), svc); err != nil {
			log.Fatalf("failed to seed inventory: %v", err)
		}
		fmt.Println("Seeding completed successfully")
	},
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}

func clearInventory(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&inventoryDatamodel.Vehicle{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&inventoryDatamodel.Classification{}).Error
	})
}

// seedInventory is safe to rerun: existing classifications are reused and
// vehicles are only added to classifications that are still empty.
func seedInventory(ctx context.Context, svc *inventory.Service) error {
	for _, name := range seedClassifications {
		_, err := svc.AddClassification(ctx, 0, inventory.AddClassificationDTO{Name: name})
		if err != nil && !errors.Is(err, internal.ErrClassificationExists) {
			return fmt.Errorf("classification %s: %w", name, err)
		}
	}

	classifications, err := svc.ListClassifications(ctx)
	if err != nil {
		return err
	}
	ids := make(map[string]int64, len(classifications))
	for _, c := range classifications {
		ids[c.Name] = c.ID
	}

	stocked := make(map[string]bool)
	for _, name := range seedClassifications {
		existing, err := svc.ListByClassification(ctx, name)
		if err != nil {
			return err
		}
		stocked[name] = len(existing) > 0
	}

	added := 0
	for _, seed := range seedVehicles {
		if stocked[seed.classification] {
			continue
		}
		dto := seed.vehicle
		dto.ClassificationID = ids[seed.classification]
		if _, err := svc.AddVehicle(ctx, 0, dto); err != nil {
			return fmt.Errorf("vehicle %s %s: %w", dto.Make, dto.Model, err)
		}
		added++
	}

	fmt.Printf("Seeded %d classifications and %d vehicles\n", len(seedClassifications), added)
	return nil
}
