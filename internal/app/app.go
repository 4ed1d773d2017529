// Package app wires the managers together. Every front end builds one App
// and passes it down; nothing here is global.
package app

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librarydesk/internal/audit"
	"github.com/mrlokans/librarydesk/internal/catalog"
	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/database"
	auditRepo "github.com/mrlokans/librarydesk/internal/database/audit"
	"github.com/mrlokans/librarydesk/internal/desk"
	"github.com/mrlokans/librarydesk/internal/membership"
	"github.com/mrlokans/librarydesk/internal/signin"
	"github.com/mrlokans/librarydesk/internal/staff"
)

type App struct {
	Config      *config.Config
	DB          *database.Database
	Audit       *audit.Service
	Catalog     *catalog.Manager
	Memberships *membership.Manager
	Staff       *staff.Registry
	Ledger      *signin.Ledger
	Exporter    *signin.Exporter
	Desk        *desk.Desk
}

// New opens the store and builds every manager on top of it.
func New(cfg *config.Config) (*App, error) {
	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	ledger := signin.NewLedger(cfg.SignIn.LogPath, signin.WithAuditLogger(auditService))

	a := &App{
		Config:      cfg,
		DB:          db,
		Audit:       auditService,
		Catalog:     catalog.NewManager(db, catalog.WithAuditLogger(auditService)),
		Memberships: membership.NewManager(db, membership.WithAuditLogger(auditService)),
		Staff:       staff.NewRegistry(db, staff.WithAuditLogger(auditService)),
		Ledger:      ledger,
		Exporter:    signin.NewExporter(ledger, cfg.Reports.Dir, auditService),
	}
	a.Desk = desk.New(desk.Services{
		Catalog:     a.Catalog,
		Memberships: a.Memberships,
		Staff:       a.Staff,
		Ledger:      a.Ledger,
		Exporter:    a.Exporter,
	})

	log.Info().
		Str("signin_log", cfg.SignIn.LogPath).
		Str("reports_dir", cfg.Reports.Dir).
		Msg("library desk ready")
	return a, nil
}

// Close flushes pending audit writes and closes the store.
func (a *App) Close() error {
	a.Audit.Wait()
	return a.DB.Close()
}
