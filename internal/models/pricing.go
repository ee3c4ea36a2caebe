package models

// Pricing is the static revenue-split lookup for one service level.
// Read-only at runtime, seeded by migration.
type Pricing struct {
	ServiceLevel            string  `db:"service_level" json:"service_level"`
	PriceMin                float64 `db:"price_min" json:"price_min"`
	PriceMax                float64 `db:"price_max" json:"price_max"`
	PlatformSharePercentage float64 `db:"platform_share_percentage" json:"platform_share_percentage"`
	NurseSharePercentage    float64 `db:"nurse_share_percentage" json:"nurse_share_percentage"`
}
