// Package store is the local, transactional database that is the single
// source of truth for all budget data on this device.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"github.com/violet-vault/backend/internal/models"
	"gorm.io/gorm"
)

// Store wraps the database handle. Inside of Transaction, it is
// bound to the database transaction.
type Store struct {
	db  *gorm.DB
	now func() time.Time
}

// Connect opens the SQLite database, migrates all collections and configures the connection pool.
func Connect(dsn string) (*Store, error) {
	config := &gorm.Config{
		// Set generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: &logger{
			Logger: log.Logger,
		},
	}

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	// Get new connections after one hour
	sqlDB.SetConnMaxLifetime(time.Hour)

	// This is done to prevent SQLITE_BUSY errors.
	// A consequence is that nothing may use the Store while a Transaction on it is open,
	// only the Store passed to the transaction function.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(models.Registry...)
	if err != nil {
		return nil, fmt.Errorf("error during DB migration: %w", err)
	}

	err = registerCallbacks(db)
	if err != nil {
		return nil, err
	}

	return &Store{db: db, now: config.NowFunc}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return classify(err)
	}

	return classify(sqlDB.PingContext(ctx))
}

// DB returns the gorm handle. It is meant for queries that the Store does not
// provide a method for.
func (s *Store) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Transaction runs fn atomically. All writes done through the Store passed to fn
// are committed together or not at all.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, now: s.now})
	})

	return classify(err)
}

func registerCallbacks(db *gorm.DB) error {
	err := db.Callback().Query().After("*").Register("violet_vault:after_query", queryCallback)
	if err != nil {
		return err
	}

	for name, register := range map[string]func(string, func(*gorm.DB)) error{
		"query":  db.Callback().Query().After("*").Register,
		"create": db.Callback().Create().After("*").Register,
		"update": db.Callback().Update().After("*").Register,
		"delete": db.Callback().Delete().After("*").Register,
	} {
		err := register(fmt.Sprintf("violet_vault:after_%s_general", name), generalCallback)
		if err != nil {
			return err
		}
	}

	return nil
}

var plural = regexp.MustCompile("ies$")

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// Use the table name as information about the type of resource
		// and replace "_" with "[space]"
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")

		// Replace pluralized "ies" with "y"
		name = plural.ReplaceAllString(name, "y")

		// Remove plural "s"
		name = strings.TrimRight(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrNotFound, name)
	}
}

// generalCallback handles errors of the database itself.
//
// For these errors, we cannot provide the user with a helpful message.
// The error is logged and wrapped in ErrStorage.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	db.Error = classify(db.Error)
}

// classify wraps errors of the database driver in ErrStorage.
func classify(err error) error {
	if err == nil || errors.Is(err, ErrStorage) {
		return err
	}

	// "sql: database is closed" is hard-coded in the sql module, see
	// https://cs.opensource.google/go/go/+/master:src/database/sql/sql.go;l=1298;drc=0d018b49e33b1383dc0ae5cc968e800dffeeaf7d
	if err.Error() == "sql: database is closed" || reflect.TypeOf(err) == reflect.TypeOf(&go_sqlite.Error{}) {
		log.Error().Str("source", "store").Msgf("%T: %v", err, err.Error())
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	return err
}
