package dao

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

const dialectPostgres = "postgres"

// claimTicketFunction is installed on PostgreSQL so the stock check and
// decrement run as one statement behind a stable procedure name.
const claimTicketFunction = `
CREATE OR REPLACE FUNCTION claim_ticket(tier_id text) RETURNS integer
LANGUAGE plpgsql AS $$
DECLARE
	new_stock integer;
BEGIN
	UPDATE ticket_tiers
	SET stock = stock - 1, updated_at = now()
	WHERE id = tier_id AND stock > 0
	RETURNING stock INTO new_stock;

	IF NOT FOUND THEN
		RETURN -1;
	END IF;

	RETURN new_stock;
END;
$$;`

func InitTables(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Guest{},
		&ConfigEntry{},
		&Venue{},
		&TicketTier{},
		&Rsvp{},
		&Ticket{},
		&TicketScan{},
	)
	if err != nil {
		return fmt.Errorf("db.AutoMigrate -> %w", err)
	}

	if db.Dialector.Name() == dialectPostgres {
		if err := db.Exec(claimTicketFunction).Error; err != nil {
			return fmt.Errorf("create claim_ticket -> %w", err)
		}
	}

	return nil
}

// isDuplicate reports a unique constraint violation from any supported driver.
func isDuplicate(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return true
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) &&
		(liteErr.ExtendedCode == sqlite3.ErrConstraintUnique || liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return true
	}

	// libSQL reports constraint failures as plain text.
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
