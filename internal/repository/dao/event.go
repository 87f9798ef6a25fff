package dao

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrConfigNotFound = errors.New("config entry not found")
	ErrVenueExists    = errors.New("venue already exists")
	ErrVenueNotFound  = errors.New("venue not found")
)

// ConfigEntry is one row of the key/value config table.
type ConfigEntry struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (ConfigEntry) TableName() string {
	return "config"
}

type Venue struct {
	ID          string `gorm:"primaryKey;size:64"`
	Name        string `gorm:"not null"`
	Vibe        string
	MinSpend    string
	ClosingTime string
	Description string   `gorm:"type:text"`
	Perks       []string `gorm:"serializer:json;type:text"`
	Color       string
	VideoURL    string
	MapsURL     string
	Position    int `gorm:"not null;default:0;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ConfigDAO struct {
	db *gorm.DB
}

func NewConfigDAO(db *gorm.DB) *ConfigDAO {
	return &ConfigDAO{
		db: db,
	}
}

func (d *ConfigDAO) Get(ctx context.Context, key string) (ConfigEntry, error) {
	var entry ConfigEntry

	result := d.db.WithContext(ctx).First(&entry, "key = ?", key)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ConfigEntry{}, ErrConfigNotFound
		}

		return ConfigEntry{}, result.Error
	}

	return entry, nil
}

// Put inserts or replaces the entry stored under entry.Key.
func (d *ConfigDAO) Put(ctx context.Context, entry ConfigEntry) error {
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}

type VenueDAO struct {
	db *gorm.DB
}

func NewVenueDAO(db *gorm.DB) *VenueDAO {
	return &VenueDAO{
		db: db,
	}
}

func (d *VenueDAO) FindAll(ctx context.Context) ([]Venue, error) {
	var venues []Venue

	result := d.db.WithContext(ctx).Order("position").Order("created_at").Order("id").Find(&venues)
	if result.Error != nil {
		return nil, result.Error
	}

	return venues, nil
}

func (d *VenueDAO) FindByID(ctx context.Context, id string) (Venue, error) {
	var venue Venue

	result := d.db.WithContext(ctx).First(&venue, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return Venue{}, ErrVenueNotFound
		}

		return Venue{}, result.Error
	}

	return venue, nil
}

// Insert appends venue after the existing ones when Position is negative.
func (d *VenueDAO) Insert(ctx context.Context, venue Venue) (Venue, error) {
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if venue.Position < 0 {
			var last sql.NullInt64
			if err := tx.Model(&Venue{}).Select("MAX(position)").Row().Scan(&last); err != nil {
				return err
			}
			venue.Position = 0
			if last.Valid {
				venue.Position = int(last.Int64) + 1
			}
		}

		return tx.Create(&venue).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return Venue{}, ErrVenueExists
		}

		return Venue{}, err
	}

	return venue, nil
}

// Update overwrites every editable column. Position and CreatedAt are kept.
func (d *VenueDAO) Update(ctx context.Context, venue Venue) (Venue, error) {
	result := d.db.WithContext(ctx).Model(&Venue{ID: venue.ID}).
		Select("name", "vibe", "min_spend", "closing_time", "description", "perks", "color", "video_url", "maps_url", "updated_at").
		Updates(&venue)
	if result.Error != nil {
		return Venue{}, result.Error
	}
	if result.RowsAffected == 0 {
		return Venue{}, ErrVenueNotFound
	}

	return d.FindByID(ctx, venue.ID)
}

func (d *VenueDAO) Delete(ctx context.Context, id string) error {
	result := d.db.WithContext(ctx).Delete(&Venue{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVenueNotFound
	}

	return nil
}
