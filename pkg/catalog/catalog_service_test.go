package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/foodgram/foodgram-backend/domain"
	"github.com/foodgram/foodgram-backend/entities"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&entities.Ingredient{}, &entities.Tag{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func seedIngredients(t *testing.T, db *gorm.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := db.Create(&entities.Ingredient{
			ID:              uuid.New(),
			Name:            name,
			MeasurementUnit: "g",
		}).Error; err != nil {
			t.Fatalf("failed to seed ingredient %s: %v", name, err)
		}
	}
}

func TestSearchIngredients_Substring(t *testing.T) {
	db := setupTestDB(t)
	service := NewCatalogService(NewCatalogRepository(db))
	ctx := context.Background()

	seedIngredients(t, db, "Wheat Flour", "rye flour", "sugar")

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"case insensitive substring", "flour", []string{"Wheat Flour", "rye flour"}},
		{"uppercase query", "FLOUR", []string{"Wheat Flour", "rye flour"}},
		{"middle of word", "uga", []string{"sugar"}},
		{"no match", "salt", []string{}},
		{"empty query returns all", "", []string{"Wheat Flour", "rye flour", "sugar"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := service.SearchIngredients(ctx, tt.query)
			if err != nil {
				t.Fatalf("SearchIngredients(%q) failed: %v", tt.query, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d results, got %d: %+v", len(tt.want), len(got), got)
			}
			found := map[string]bool{}
			for _, ing := range got {
				found[ing.Name] = true
			}
			for _, name := range tt.want {
				if !found[name] {
					t.Errorf("expected %q in results, got %+v", name, got)
				}
			}
		})
	}
}

func TestSearchIngredients_OrderedByName(t *testing.T) {
	db := setupTestDB(t)
	service := NewCatalogService(NewCatalogRepository(db))
	ctx := context.Background()

	seedIngredients(t, db, "salt", "eggs", "milk")

	got, err := service.SearchIngredients(ctx, "")
	if err != nil {
		t.Fatalf("SearchIngredients failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i, want := range []string{"eggs", "milk", "salt"} {
		if got[i].Name != want {
			t.Errorf("position %d: expected %q, got %q", i, want, got[i].Name)
		}
	}
}

func TestGetIngredientByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	service := NewCatalogService(NewCatalogRepository(db))
	ctx := context.Background()

	if _, err := service.GetIngredientByID(ctx, uuid.New().String()); !errors.Is(err, domain.ErrIngredientNotFound) {
		t.Fatalf("expected ErrIngredientNotFound, got %v", err)
	}
}

func TestGetTags(t *testing.T) {
	db := setupTestDB(t)
	service := NewCatalogService(NewCatalogRepository(db))
	ctx := context.Background()

	tag := &entities.Tag{
		ID:    uuid.New(),
		Name:  "Breakfast",
		Color: "#E26C2D",
		Slug:  "breakfast",
	}
	if err := db.Create(tag).Error; err != nil {
		t.Fatalf("failed to seed tag: %v", err)
	}

	tags, err := service.GetTags(ctx)
	if err != nil {
		t.Fatalf("GetTags failed: %v", err)
	}
	if len(tags) != 1 {
		t.Fatalf("expected 1 tag, got %d", len(tags))
	}
	if tags[0].Slug != "breakfast" || tags[0].Color != "#E26C2D" {
		t.Errorf("unexpected tag: %+v", tags[0])
	}

	got, err := service.GetTagByID(ctx, tag.ID.String())
	if err != nil {
		t.Fatalf("GetTagByID failed: %v", err)
	}
	if got.Name != "Breakfast" {
		t.Errorf("expected Breakfast, got %q", got.Name)
	}

	if _, err := service.GetTagByID(ctx, uuid.New().String()); !errors.Is(err, domain.ErrTagNotFound) {
		t.Fatalf("expected ErrTagNotFound, got %v", err)
	}
}
