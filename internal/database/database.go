package database

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/librarydesk/internal/apperr"
	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/logging"
)

// DefaultStoreTimeout applies when the configuration leaves it unset.
const DefaultStoreTimeout = 5 * time.Second

// Database is the persistence gateway: it owns the connection, runs
// transactional scopes and translates driver failures into apperr kinds.
type Database struct {
	DB      *gorm.DB
	Driver  config.DatabaseDriver
	timeout time.Duration
}

func NewDatabase(cfg config.Database) (*Database, error) {
	if cfg.Driver == "" {
		cfg.Driver = config.DriverSQLite
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = DefaultStoreTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverMySQL:
		dialector = mysql.Open(cfg.DSN())
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	default:
		dialector = sqlite.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logging.NewGormLogger(cfg.LogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.Book{},
		&entities.Inventory{},
		&entities.Sequence{},
		&entities.Member{},
		&entities.Membership{},
		&entities.Staff{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info().
		Str("driver", string(cfg.Driver)).
		Dur("store_timeout", cfg.StoreTimeout).
		Msg("database initialized")

	return &Database{DB: db, Driver: cfg.Driver, timeout: cfg.StoreTimeout}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping checks that the store is reachable within the store timeout.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Timeout is the bound applied to every gateway call.
func (d *Database) Timeout() time.Duration {
	return d.timeout
}

// WithTransaction runs fn inside one transaction. The transaction commits
// when fn returns nil and rolls back on any error or panic. Errors already
// typed by fn are returned unchanged; driver errors are translated.
func (d *Database) WithTransaction(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.DB.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	return d.translate(ctx, op, err)
}

// Execute runs a single statement outside an explicit transaction and
// returns the number of affected rows.
func (d *Database) Execute(ctx context.Context, op, stmt string, args ...any) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	result := d.DB.WithContext(ctx).Exec(stmt, args...)
	if result.Error != nil {
		return 0, d.translate(ctx, op, result.Error)
	}
	return result.RowsAffected, nil
}

// Query returns a lazy sequence over the rows of stmt scanned into T. The
// statement runs when the sequence is ranged over, so ranging again re-reads
// the store. Iteration stops after the first error.
func Query[T any](ctx context.Context, d *Database, op, stmt string, args ...any) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T

		ctx, cancel := context.WithTimeout(ctx, d.timeout)
		defer cancel()

		conn := d.DB.WithContext(ctx)
		rows, err := conn.Raw(stmt, args...).Rows()
		if err != nil {
			yield(zero, d.translate(ctx, op, err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var item T
			if err := conn.ScanRows(rows, &item); err != nil {
				yield(zero, d.translate(ctx, op, err))
				return
			}
			if !yield(item, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(zero, d.translate(ctx, op, err))
		}
	}
}

// Collect drains a sequence into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (d *Database) translate(ctx context.Context, op string, err error) error {
	return TranslateError(op, err, ctx.Err())
}

// TranslateError maps a store error onto the apperr taxonomy. ctxErr is the
// state of the operation's context when the error surfaced.
func TranslateError(op string, err, ctxErr error) error {
	if err == nil {
		return nil
	}
	var typed *apperr.Error
	if errors.As(err, &typed) {
		return apperr.WithOp(op, err)
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctxErr, context.DeadlineExceeded):
		return apperr.Timeout(op, err)
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return &apperr.Error{Kind: apperr.KindDuplicate, Op: op, Message: "record already exists", Err: err}
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &apperr.Error{Kind: apperr.KindNotFound, Op: op, Message: "record not found", Err: err}
	default:
		return apperr.Persistence(op, err)
	}
}

func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}
