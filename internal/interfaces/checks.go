package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/librarydesk/internal/audit"
	"github.com/mrlokans/librarydesk/internal/catalog"
	"github.com/mrlokans/librarydesk/internal/database"
	"github.com/mrlokans/librarydesk/internal/desk"
	"github.com/mrlokans/librarydesk/internal/http"
	"github.com/mrlokans/librarydesk/internal/membership"
	"github.com/mrlokans/librarydesk/internal/scheduler"
	"github.com/mrlokans/librarydesk/internal/signin"
	"github.com/mrlokans/librarydesk/internal/staff"
	"github.com/mrlokans/librarydesk/internal/tasks"
)

// =============================================================================
// Presentation Contract
// =============================================================================

var _ desk.Catalog = (*catalog.Manager)(nil)
var _ desk.Memberships = (*membership.Manager)(nil)
var _ desk.StaffRegistry = (*staff.Registry)(nil)
var _ desk.SignInLedger = (*signin.Ledger)(nil)
var _ desk.ReportExporter = (*signin.Exporter)(nil)

// =============================================================================
// HTTP Stores
// =============================================================================

var _ http.BookStore = (*catalog.Manager)(nil)
var _ http.MemberStore = (*membership.Manager)(nil)
var _ http.StaffStore = (*staff.Registry)(nil)
var _ http.SignInStore = (*signin.Ledger)(nil)
var _ http.AuditReader = (*audit.Service)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.Schedule = (*scheduler.MaintenanceScheduler)(nil)
var _ http.Pinger = (*database.Database)(nil)
var _ http.Pinger = (*signin.Ledger)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ catalog.AuditLogger = (*audit.Service)(nil)
var _ membership.AuditLogger = (*audit.Service)(nil)
var _ staff.AuditLogger = (*audit.Service)(nil)
var _ signin.AuditLogger = (*audit.Service)(nil)
var _ signin.ReportAuditLogger = (*audit.Service)(nil)

// =============================================================================
// Background Maintenance
// =============================================================================

var _ tasks.AuditEventCleaner = (*audit.Service)(nil)
var _ tasks.ReportExporter = (*signin.Exporter)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
