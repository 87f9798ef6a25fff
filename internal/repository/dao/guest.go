package dao

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var (
	ErrGuestPhoneExists = errors.New("guest phone already exists")
	ErrGuestNotFound    = errors.New("guest not found")
)

type Guest struct {
	ID     string `gorm:"primaryKey;size:36"`
	Name   string `gorm:"not null"`
	Phone  string `gorm:"uniqueIndex;size:16;not null"`
	Used   bool   `gorm:"not null;default:false"`
	UsedAt *time.Time

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type GuestDAO struct {
	db *gorm.DB
}

func NewGuestDAO(db *gorm.DB) *GuestDAO {
	return &GuestDAO{
		db: db,
	}
}

func (d *GuestDAO) Insert(ctx context.Context, guest Guest) (Guest, error) {
	result := d.db.WithContext(ctx).Create(&guest)
	if result.Error != nil {
		if isDuplicate(result.Error) {
			return Guest{}, ErrGuestPhoneExists
		}

		return Guest{}, result.Error
	}

	return guest, nil
}

func (d *GuestDAO) FindAll(ctx context.Context) ([]Guest, error) {
	var guests []Guest

	result := d.db.WithContext(ctx).Order("created_at").Order("name").Find(&guests)
	if result.Error != nil {
		return nil, result.Error
	}

	return guests, nil
}

func (d *GuestDAO) FindByID(ctx context.Context, id string) (Guest, error) {
	var guest Guest

	result := d.db.WithContext(ctx).First(&guest, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Guest{}, ErrGuestNotFound
		}

		return Guest{}, result.Error
	}

	return guest, nil
}

func (d *GuestDAO) FindByPhone(ctx context.Context, phone string) (Guest, error) {
	var guest Guest

	result := d.db.WithContext(ctx).First(&guest, "phone = ?", phone)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Guest{}, ErrGuestNotFound
		}

		return Guest{}, result.Error
	}

	return guest, nil
}

// SetUsed writes the admission flag. A nil usedAt clears it.
func (d *GuestDAO) SetUsed(ctx context.Context, id string, usedAt *time.Time) error {
	result := d.db.WithContext(ctx).Model(&Guest{}).Where("id = ?", id).Updates(map[string]any{
		"used":    usedAt != nil,
		"used_at": usedAt,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGuestNotFound
	}

	return nil
}

func (d *GuestDAO) Delete(ctx context.Context, id string) error {
	result := d.db.WithContext(ctx).Delete(&Guest{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGuestNotFound
	}

	return nil
}

func (d *GuestDAO) Count(ctx context.Context) (int64, error) {
	var count int64

	result := d.db.WithContext(ctx).Model(&Guest{}).Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}

	return count, nil
}
