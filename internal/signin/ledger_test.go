package signin

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarydesk/internal/apperr"
	"github.com/mrlokans/librarydesk/internal/entities"
)

func collect[T any](t *testing.T, seq iter.Seq2[T, error]) []T {
	t.Helper()
	var out []T
	for item, err := range seq {
		require.NoError(t, err)
		out = append(out, item)
	}
	return out
}

func fixedClock() time.Time {
	return time.Date(2024, 4, 2, 9, 15, 30, 123_000_000, time.Local)
}

func TestLedger_RecordSignIn(t *testing.T) {
	t.Run("appends a line and reports it", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "signin.txt")
		l := NewLedger(path, WithClock(fixedClock))

		rec, err := l.RecordSignIn("1", "Alice", entities.RoleReader)
		require.NoError(t, err)
		assert.Equal(t, "Alice", rec.Name)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "1,Alice,Reader,2024-04-02T09:15:30.123\n", string(raw))

		lines := collect(t, l.GenerateReport())
		require.Len(t, lines, 1)
		assert.Contains(t, lines[0], "Alice")
		assert.Contains(t, lines[0], "Reader")
		assert.Equal(t, "ID: 1          Name: Alice           Type: Reader  Signed In At: 2024-04-02T09:15:30.123", lines[0])
	})

	t.Run("rejects invalid input without touching the log", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "signin.txt")
		l := NewLedger(path)

		tests := []struct {
			name    string
			id, who string
			role    entities.SignInRole
		}{
			{"empty id", "", "Alice", entities.RoleReader},
			{"blank name", "1", "  ", entities.RoleStaff},
			{"unknown role", "1", "Alice", "Visitor"},
			{"comma in name", "1", "Doe, John", entities.RoleReader},
			{"newline in id", "1\n2", "Alice", entities.RoleReader},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := l.RecordSignIn(tt.id, tt.who, tt.role)
				assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
			})
		}
		_, err := os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("unwritable log is an io error", func(t *testing.T) {
		l := NewLedger(filepath.Join(t.TempDir(), "missing", "signin.txt"))
		_, err := l.RecordSignIn("1", "Alice", entities.RoleReader)
		assert.True(t, errors.Is(err, apperr.ErrIO), "got %v", err)
	})

	t.Run("concurrent sign-ins never interleave", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "signin.txt")
		l := NewLedger(path)

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := l.RecordSignIn(fmt.Sprint(i), fmt.Sprintf("Reader%02d", i), entities.RoleReader)
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
		require.Len(t, lines, 50)
		for _, line := range lines {
			assert.Len(t, strings.Split(line, ","), 4, line)
		}
		assert.Len(t, collect(t, l.Records()), 50)
	})
}

func TestLedger_GenerateReport(t *testing.T) {
	t.Run("missing log is empty", func(t *testing.T) {
		l := NewLedger(filepath.Join(t.TempDir(), "absent.txt"))
		assert.Empty(t, collect(t, l.GenerateReport()))
		assert.Empty(t, collect(t, l.Records()))
	})

	t.Run("skips short lines and keeps append order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "signin.txt")
		content := "2,Bob,Staff,2024-01-01T08:00:00.000\n" +
			"garbage\n" +
			"\n" +
			"1,Alice,Reader,2024-01-01T09:00:00.000\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		l := NewLedger(path)

		lines := collect(t, l.GenerateReport())
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], "Bob")
		assert.Contains(t, lines[1], "Alice")

		// ranging again re-reads the file
		require.NoError(t, os.WriteFile(path, []byte(content+"3,Carol,Reader,2024-01-01T10:00:00.000\n"), 0o644))
		assert.Len(t, collect(t, l.GenerateReport()), 3)
	})

	t.Run("records skip malformed timestamps", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "signin.txt")
		content := "1,Alice,Reader,yesterday\n2,Bob,Staff,2024-01-01T08:00:00.000\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		l := NewLedger(path)

		assert.Len(t, collect(t, l.GenerateReport()), 2)
		recs := collect(t, l.Records())
		require.Len(t, recs, 1)
		assert.Equal(t, "Bob", recs[0].Name)
		assert.Equal(t, entities.RoleStaff, recs[0].Role)
		assert.Equal(t, 8, recs[0].Timestamp.Hour())
	})

	t.Run("directory in place of log is an io error", func(t *testing.T) {
		l := NewLedger(t.TempDir())
		var gotErr error
		for _, err := range l.GenerateReport() {
			gotErr = err
		}
		assert.True(t, errors.Is(gotErr, apperr.ErrIO), "got %v", gotErr)
	})
}

type reportAudit struct {
	actions []string
	failed  bool
}

func (r *reportAudit) LogReport(action, description string, err error) {
	r.actions = append(r.actions, action)
	r.failed = err != nil
}

func TestExporter_Export(t *testing.T) {
	dir := t.TempDir()
	l := NewLedger(filepath.Join(dir, "signin.txt"), WithClock(fixedClock))
	_, err := l.RecordSignIn("1", "Alice", entities.RoleReader)
	require.NoError(t, err)
	_, err = l.RecordSignIn("2", "Bob", entities.RoleStaff)
	require.NoError(t, err)

	rec := &reportAudit{}
	reports := filepath.Join(dir, "reports")
	e := NewExporter(l, reports, rec)
	e.clock = fixedClock

	first, err := e.Export()
	require.NoError(t, err)
	assert.Equal(t, 2, first.Lines)
	assert.Equal(t, reports, filepath.Dir(first.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(first.Path), "signin-report-2024-04-02-"))

	raw, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(raw), "\n"))
	assert.Contains(t, string(raw), "Name: Bob")

	second, err := e.Export()
	require.NoError(t, err)
	assert.NotEqual(t, first.Path, second.Path)

	assert.Equal(t, []string{"signin_export", "signin_export"}, rec.actions)
	assert.False(t, rec.failed)
}

func TestLedger_Ping(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	l := NewLedger(filepath.Join(dir, "signin.txt"))
	assert.NoError(t, l.Ping(ctx), "absent log is fine")

	_, err := l.RecordSignIn("1", "Alice", entities.RoleReader)
	require.NoError(t, err)
	assert.NoError(t, l.Ping(ctx))

	assert.Error(t, NewLedger(filepath.Join(dir, "missing", "signin.txt")).Ping(ctx))
	assert.Error(t, NewLedger(dir).Ping(ctx), "log path is a directory")

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, l.Ping(cancelled), context.Canceled)
}
