package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"

	"github.com/foodgram/foodgram-backend/cmd/config"
	migration "github.com/foodgram/foodgram-backend/cmd/database/migrate"
	"github.com/foodgram/foodgram-backend/entities"
	"github.com/foodgram/foodgram-backend/internal/utils"
	"github.com/google/uuid"
)

type ingredientRecord struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// Loads the ingredient catalog from a JSON file into the database.
// Entries whose name is already present are skipped.
func main() {
	path := flag.String("file", "ingredients.json", "path to the ingredients JSON file")
	flag.Parse()

	utils.LoadConfig()

	db, err := config.ConnectDB()
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	if err := migration.Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	file, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("failed to read %s: %v", *path, err)
	}

	var records []ingredientRecord
	if err := json.Unmarshal(file, &records); err != nil {
		log.Fatalf("failed to parse %s: %v", *path, err)
	}

	ctx := context.Background()
	loaded := 0
	for _, record := range records {
		var count int64
		if err := db.WithContext(ctx).
			Model(&entities.Ingredient{}).
			Where("name = ?", record.Name).
			Count(&count).Error; err != nil {
			log.Fatalf("failed to check ingredient %q: %v", record.Name, err)
		}
		if count > 0 {
			continue
		}

		ingredient := entities.Ingredient{
			ID:              uuid.New(),
			Name:            record.Name,
			MeasurementUnit: record.MeasurementUnit,
		}
		if err := db.WithContext(ctx).Create(&ingredient).Error; err != nil {
			log.Fatalf("failed to create ingredient %q: %v", record.Name, err)
		}
		loaded++
	}

	log.Printf("loaded %d ingredients (%d skipped)", loaded, len(records)-loaded)
}
