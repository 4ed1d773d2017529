package signin

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mrlokans/librarydesk/internal/apperr"
)

type ReportAuditLogger interface {
	LogReport(action, description string, err error)
}

// Exporter snapshots the sign-in report into a directory.
type Exporter struct {
	ReportsDir string
	ledger     *Ledger
	clock      func() time.Time
	audit      ReportAuditLogger
}

func NewExporter(ledger *Ledger, reportsDir string, audit ReportAuditLogger) *Exporter {
	return &Exporter{
		ReportsDir: reportsDir,
		ledger:     ledger,
		clock:      time.Now,
		audit:      audit,
	}
}

// ExportResult describes one written snapshot.
type ExportResult struct {
	Path  string `json:"path"`
	Lines int    `json:"lines"`
}

// Export writes the current report to signin-report-<date>-<uuid>.txt and
// returns where it went. An empty log produces an empty file.
func (e *Exporter) Export() (ExportResult, error) {
	const op = "ExportReport"
	result, err := e.export(op)
	if e.audit != nil {
		e.audit.LogReport("signin_export", fmt.Sprintf("Exported %d sign-ins to %s", result.Lines, filepath.Base(result.Path)), err)
	}
	return result, err
}

func (e *Exporter) export(op string) (ExportResult, error) {
	var sb strings.Builder
	lines := 0
	for line, err := range e.ledger.GenerateReport() {
		if err != nil {
			return ExportResult{}, apperr.WithOp(op, err)
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
		lines++
	}

	if err := e.ensureReportsDir(); err != nil {
		return ExportResult{}, apperr.IO(op, err)
	}

	filename := fmt.Sprintf("signin-report-%s-%s.txt", e.clock().Format("2006-01-02"), uuid.New().String())
	path := filepath.Join(e.ReportsDir, filename)
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return ExportResult{}, apperr.IO(op, fmt.Errorf("failed to write report file: %w", err))
	}

	log.Info().Str("path", path).Int("lines", lines).Msg("sign-in report exported")
	return ExportResult{Path: path, Lines: lines}, nil
}

func (e *Exporter) ensureReportsDir() error {
	if err := os.MkdirAll(e.ReportsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create reports directory: %w", err)
	}
	return nil
}
