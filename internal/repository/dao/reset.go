package dao

import (
	"context"

	"gorm.io/gorm"
)

type ResetDAO struct {
	db *gorm.DB
}

func NewResetDAO(db *gorm.DB) *ResetDAO {
	return &ResetDAO{
		db: db,
	}
}

// Reset wipes submissions, tickets and the scan log, clears every guest's
// admission flag and restores tier stock, all in one transaction.
func (d *ResetDAO) Reset(ctx context.Context, stocks map[string]int) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})

		if err := all.Delete(&TicketScan{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&Ticket{}).Error; err != nil {
			return err
		}
		if err := all.Delete(&Rsvp{}).Error; err != nil {
			return err
		}
		err := all.Model(&Guest{}).Updates(map[string]any{"used": false, "used_at": nil}).Error
		if err != nil {
			return err
		}

		return setStocks(tx, stocks)
	})
}
