// Package database provides the persistence gateway for the library.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, transactions, error translation
//	├── books/           # Book and inventory statements
//	├── members/         # Member and membership rows
//	├── staff/           # Staff registry rows
//	└── audit/           # Audit trail
//
// # Gateway
//
// Managers never touch *gorm.DB outside a scope the gateway opened:
//
//	db, err := database.NewDatabase(cfg.Database)
//
//	err = db.WithTransaction(ctx, "AddBook", func(tx *gorm.DB) error {
//		repo := books.NewRepository(tx)
//		...
//	})
//
//	n, err := db.Execute(ctx, "BorrowBookByID", books.DecrementStatement, id)
//
//	for row, err := range database.Query[entities.BookListing](ctx, db, "ListBooks", books.ListStatement) {
//		...
//	}
//
// Every call is bounded by the configured store timeout. Failures come back
// as *apperr.Error: deadline expiry as a timeout, unique-key violations as
// duplicates, anything else from the driver as a persistence error.
//
// # Drivers
//
// DATABASE_DRIVER selects sqlite (default), mysql or postgres. SQLite is
// opened in WAL mode with immediate transactions and a busy timeout so
// concurrent writers queue instead of failing.
package database
