package db

import (
	"fmt"
	"net/url"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql" // Registers the "libsql" database/sql driver.
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lumina-events/invitation-api/internal/config"
)

const slowQueryThreshold = 200 * time.Millisecond

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverLibSQL   = "libsql"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// Maps driver specific unique violations to gorm.ErrDuplicatedKey.
		TranslateError: true,

		// Slow and failed statements go to zap. Record misses are not logged.
		Logger: gormlogger.New(zap.NewStdLog(zap.L()), gormlogger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Open connects to the database selected by conf.Driver.
func Open(conf *config.DatabaseConfig) (*gorm.DB, error) {
	switch conf.Driver {
	case DriverPostgres:
		return OpenPostgres(conf)
	case DriverSQLite:
		return OpenSQLite(conf.Path)
	case DriverLibSQL:
		return OpenLibSQL(conf.URL, conf.AuthToken)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", conf.Driver)
	}
}

func OpenPostgres(conf *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		conf.Host, conf.User, conf.Password, conf.DBName, conf.Port, conf.SSLMode,
	)

	return OpenPostgresWithURL(dsn)
}

func OpenPostgresWithURL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open(postgres) -> %w", err)
	}

	return db, nil
}

// OpenSQLite opens a file backed database. Writes are funneled through a
// single connection so concurrent requests queue instead of failing with
// SQLITE_BUSY.
func OpenSQLite(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL", path)

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open(sqlite) -> %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB() -> %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// OpenLibSQL connects to a Turso/libSQL database. libSQL speaks the SQLite
// dialect, so the gorm sqlite dialector is reused on top of the libsql driver.
func OpenLibSQL(rawURL, authToken string) (*gorm.DB, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("url.Parse() -> %w", err)
	}
	if authToken != "" {
		q := u.Query()
		q.Set("authToken", authToken)
		u.RawQuery = q.Encode()
	}

	db, err := gorm.Open(sqlite.New(sqlite.Config{
		DriverName: "libsql",
		DSN:        u.String(),
	}), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open(libsql) -> %w", err)
	}

	return db, nil
}
