// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Presentation Contract
//
//   - desk.Catalog, desk.Memberships, desk.StaffRegistry: managers the desk
//     dispatches to (internal/desk/desk.go)
//   - desk.SignInLedger, desk.ReportExporter: attendance log and report
//     snapshots (internal/desk/desk.go)
//
// ## HTTP Stores
//
//   - BookStore, MemberStore, StaffStore, SignInStore: per-controller views
//     of the managers (internal/http/stores.go)
//   - AuditReader, TaskQueue, Pinger: audit trail, background queue and
//     health check (internal/http/stores.go)
//
// ## Audit Trail
//
//   - catalog.AuditLogger, membership.AuditLogger, staff.AuditLogger,
//     signin.AuditLogger: optional audit sinks injected with WithAuditLogger.
//     audit.Service implements all of them.
//
// ## Background Maintenance
//
//   - tasks.ReportExporter, tasks.AuditEventCleaner: queue processors
//   - scheduler.Enqueuer: where cron jobs put their tasks
//
// # Adding a New Manager Operation
//
//  1. Add the method to the manager, returning apperr errors.
//
//  2. Add it to the interface of every front end that needs it:
//     desk.Catalog (plus a desk.Command and its Fields) and http.BookStore.
//
//  3. Register the route in internal/http/router.go. The CLI picks up new
//     desk commands through internal/cli/commands.go.
//
// # Adding a New Maintenance Task
//
//  1. Define the task and its queue in internal/tasks/, following
//     export_report.go.
//
//  2. Register the queue in entrypoint.startTasks and list it in tasks.Types.
//
//  3. For a scheduled run, add a Job constructor in internal/scheduler/jobs.go.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
