package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/carelinkvn/carelink-backend/internal/models"
)

var ErrPricingNotFound = errors.New("pricing not found for service level")

// PricingRepository reads the static revenue-split table.
type PricingRepository struct {
	db *sqlx.DB
}

func NewPricingRepository(db *sqlx.DB) *PricingRepository {
	return &PricingRepository{db: db}
}

func (r *PricingRepository) GetByServiceLevel(ctx context.Context, serviceLevel string) (*models.Pricing, error) {
	var p models.Pricing
	err := r.db.GetContext(ctx, &p, `SELECT * FROM pricing WHERE service_level = $1`, serviceLevel)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPricingNotFound
	}
	return &p, err
}
