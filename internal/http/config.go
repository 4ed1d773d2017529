package http

// RouterConfig contains all dependencies needed to create the HTTP router.
// Optional dependencies left nil disable their routes.
type RouterConfig struct {
	// Core managers
	Books    BookStore
	Members  MemberStore
	Staff    StaffStore
	SignIns  SignInStore
	Database Pinger

	// SignInLog is probed by /health alongside the database.
	SignInLog Pinger

	// Audit trail (optional)
	Audit AuditReader

	// Task queue and its cron schedule (optional)
	Tasks    TaskQueue
	Schedule Schedule

	// Application info
	Version string
}
