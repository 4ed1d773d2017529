package config

// Default paths for local state
const (
	// DefaultDatabasePath is the default path for the sqlite library database
	DefaultDatabasePath = "./library.db"

	// DefaultSignInLogPath is the default path for the append-only attendance log
	DefaultSignInLogPath = "./signin_report.txt"
)
