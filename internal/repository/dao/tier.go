package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ClaimExhausted is returned by Claim when the tier had no stock left.
const ClaimExhausted = -1

var (
	ErrTierExists   = errors.New("ticket tier already exists")
	ErrTierNotFound = errors.New("ticket tier not found")
)

const claimStatement = `UPDATE ticket_tiers SET stock = stock - 1, updated_at = ? WHERE id = ? AND stock > 0 RETURNING stock`

type TicketTier struct {
	ID          string `gorm:"primaryKey;size:32"`
	Name        string `gorm:"not null"`
	Description string
	Stock       int      `gorm:"not null;default:0;check:stock >= 0"`
	Color       string
	Perks       []string `gorm:"serializer:json;type:text"`
	Position    int      `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TierDAO struct {
	db *gorm.DB
}

func NewTierDAO(db *gorm.DB) *TierDAO {
	return &TierDAO{
		db: db,
	}
}

func (d *TierDAO) Insert(ctx context.Context, tier TicketTier) (TicketTier, error) {
	result := d.db.WithContext(ctx).Create(&tier)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return TicketTier{}, ErrTierExists
		}

		return TicketTier{}, result.Error
	}

	return tier, nil
}

func (d *TierDAO) FindAll(ctx context.Context) ([]TicketTier, error) {
	var tiers []TicketTier

	result := d.db.WithContext(ctx).Order("position").Order("id").Find(&tiers)
	if result.Error != nil {
		return nil, result.Error
	}

	return tiers, nil
}

func (d *TierDAO) FindByID(ctx context.Context, id string) (TicketTier, error) {
	var tier TicketTier

	result := d.db.WithContext(ctx).First(&tier, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return TicketTier{}, ErrTierNotFound
		}

		return TicketTier{}, result.Error
	}

	return tier, nil
}

// SetStocks overwrites the stock of every listed tier in one transaction.
// Unknown tier IDs are skipped.
func (d *TierDAO) SetStocks(ctx context.Context, stocks map[string]int) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return setStocks(tx, stocks)
	})
}

func setStocks(tx *gorm.DB, stocks map[string]int) error {
	for id, stock := range stocks {
		err := tx.Model(&TicketTier{}).Where("id = ?", id).Update("stock", stock).Error
		if err != nil {
			return fmt.Errorf("update stock of %s -> %w", id, err)
		}
	}

	return nil
}

// Claim takes one unit of stock from the tier in a single statement and
// returns the remaining stock, or ClaimExhausted if nothing was left.
func (d *TierDAO) Claim(ctx context.Context, tierID string) (int, error) {
	db := d.db.WithContext(ctx)

	if db.Dialector.Name() == dialectPostgres {
		var stock int
		if err := db.Raw("SELECT claim_ticket(?)", tierID).Row().Scan(&stock); err != nil {
			return 0, err
		}

		return stock, nil
	}

	rows, err := db.Raw(claimStatement, time.Now().UTC(), tierID).Rows()
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	if !rows.Next() {
		return ClaimExhausted, rows.Err()
	}

	var stock int
	if err := rows.Scan(&stock); err != nil {
		return 0, err
	}

	return stock, rows.Err()
}

// Release puts one unit back into a tier's stock.
func (d *TierDAO) Release(ctx context.Context, tierID string) error {
	res := d.db.WithContext(ctx).
		Model(&TicketTier{}).
		Where("id = ?", tierID).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + 1"),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrTierNotFound
	}

	return nil
}
