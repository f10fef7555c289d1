package entities

import (
	"github.com/google/uuid"
)

// Ingredient is a shared catalog entry. Recipes reference it through
// IngredientAmount and never copy it.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name            string    `gorm:"uniqueIndex;not null" json:"name"`
	MeasurementUnit string    `gorm:"not null" json:"measurement_unit"`
}

type Tag struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name  string    `gorm:"not null" json:"name"`
	Color string    `gorm:"type:varchar(7);uniqueIndex" json:"color"`
	Slug  string    `gorm:"uniqueIndex;not null" json:"slug"`
}
