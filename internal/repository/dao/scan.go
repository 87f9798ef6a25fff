package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrScanExists   = errors.New("ticket already scanned")
	ErrScanNotFound = errors.New("scan not found")
)

// TicketScan is an append-only door log. One row per ticket.
type TicketScan struct {
	ID         uint   `gorm:"primaryKey"`
	TicketID   string `gorm:"uniqueIndex;size:64;not null"`
	GuestName  string
	GuestEmail string
	TierName   string
	ScannedAt  time.Time `gorm:"not null"`
}

type ScanDAO struct {
	db *gorm.DB
}

func NewScanDAO(db *gorm.DB) *ScanDAO {
	return &ScanDAO{
		db: db,
	}
}

func (d *ScanDAO) Insert(ctx context.Context, scan TicketScan) (TicketScan, error) {
	result := d.db.WithContext(ctx).Create(&scan)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return TicketScan{}, ErrScanExists
		}

		return TicketScan{}, result.Error
	}

	return scan, nil
}

func (d *ScanDAO) FindByTicketID(ctx context.Context, ticketID string) (TicketScan, error) {
	var scan TicketScan

	result := d.db.WithContext(ctx).First(&scan, "ticket_id = ?", ticketID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return TicketScan{}, ErrScanNotFound
		}

		return TicketScan{}, result.Error
	}

	return scan, nil
}

func (d *ScanDAO) FindAll(ctx context.Context) ([]TicketScan, error) {
	var scans []TicketScan

	result := d.db.WithContext(ctx).Order("scanned_at DESC").Find(&scans)
	if result.Error != nil {
		return nil, result.Error
	}

	return scans, nil
}

func (d *ScanDAO) Count(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&TicketScan{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
