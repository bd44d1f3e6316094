package models

import "gorm.io/gorm"

// Serving units supported by the catalog. A recipe row must use the same
// unit as the ingredient's serving fact; there is no unit conversion.
const (
	UnitGram       = "g"
	UnitMilliliter = "ml"
	UnitPiece      = "unit"
)

func ValidServingUnit(u string) bool {
	return u == UnitGram || u == UnitMilliliter || u == UnitPiece
}

// Ingredient is a catalog entry. The macro fields are per ServingSize
// ServingUnit (e.g. 389 kcal per 100 g of oats).
type Ingredient struct {
	gorm.Model
	Name        string  `gorm:"not null" json:"name"`
	ServingSize float64 `gorm:"not null" json:"serving_size"` // > 0
	ServingUnit string  `gorm:"size:8;not null" json:"serving_unit"`
	Calories    float64 `json:"calories"`
	Protein     float64 `json:"protein"`
	Carbs       float64 `json:"carbs"`
	Fat         float64 `json:"fat"`
	IsVerified  bool    `json:"is_verified"`
}
