package models

import "gorm.io/gorm"

// Ingredient is bulk-loaded reference data. Neither the name nor the
// (name, unit) pair is unique at the schema level: the same name may
// exist with several measurement units, and duplicate records sharing
// both are tolerated and merged by the shopping list aggregator.
type Ingredient struct {
	gorm.Model
	Name            string `gorm:"not null;size:128;index" json:"name"`
	MeasurementUnit string `gorm:"not null;size:64" json:"measurement_unit"`
}
