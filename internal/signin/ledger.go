// Package signin keeps the append-only attendance log.
//
// Each sign-in is one line "id,name,role,timestamp" in a plain text file.
// Appends from this process are serialised and written with a single
// write on an O_APPEND descriptor, then synced, so a reader never sees a
// partial line.
package signin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrlokans/librarydesk/internal/apperr"
	"github.com/mrlokans/librarydesk/internal/entities"
	"github.com/mrlokans/librarydesk/internal/logging"
	"github.com/mrlokans/librarydesk/internal/validation"
)

// TimestampLayout sorts lexically in time order.
const TimestampLayout = "2006-01-02T15:04:05.000"

const maxLineBytes = 1 << 20

type AuditLogger interface {
	LogSignIn(description string, err error)
}

type Ledger struct {
	path  string
	mu    sync.Mutex
	clock func() time.Time
	audit AuditLogger
	log   zerolog.Logger
}

type Option func(*Ledger)

func WithClock(clock func() time.Time) Option {
	return func(l *Ledger) { l.clock = clock }
}

func WithAuditLogger(a AuditLogger) Option {
	return func(l *Ledger) { l.audit = a }
}

func NewLedger(path string, opts ...Option) *Ledger {
	l := &Ledger{path: path, clock: time.Now, log: logging.Component("signin")}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Ping reports whether the log can be appended to: the file, if present,
// must be a regular file and its directory must exist.
func (l *Ledger) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir, err := os.Stat(filepath.Dir(l.path))
	if err != nil {
		return err
	}
	if !dir.IsDir() {
		return fmt.Errorf("%s is not a directory", filepath.Dir(l.path))
	}
	info, err := os.Stat(l.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return err
	case !info.Mode().IsRegular():
		return fmt.Errorf("%s is not a regular file", l.path)
	}
	return nil
}

type SignInInput struct {
	ID   string              `json:"id" validate:"notblank,nodelim"`
	Name string              `json:"name" validate:"notblank,nodelim"`
	Role entities.SignInRole `json:"role" validate:"oneof=Staff Reader"`
}

// RecordSignIn appends one attendance record stamped with the current time
// and returns once it is on disk.
func (l *Ledger) RecordSignIn(id, name string, role entities.SignInRole) (entities.SignInRecord, error) {
	const op = "RecordSignIn"
	in := SignInInput{ID: strings.TrimSpace(id), Name: strings.TrimSpace(name), Role: role}
	if err := validation.Struct(op, in); err != nil {
		return entities.SignInRecord{}, err
	}

	rec := entities.SignInRecord{
		ID:        in.ID,
		Name:      in.Name,
		Role:      in.Role,
		Timestamp: l.clock().Truncate(time.Millisecond),
	}
	line := fmt.Sprintf("%s,%s,%s,%s\n", rec.ID, rec.Name, rec.Role, rec.Timestamp.Format(TimestampLayout))

	err := l.append(op, []byte(line))
	if l.audit != nil {
		l.audit.LogSignIn(fmt.Sprintf("%s %s signed in", rec.Role, rec.Name), err)
	}
	if err != nil {
		return entities.SignInRecord{}, err
	}
	l.log.Info().Str("id", rec.ID).Str("role", string(rec.Role)).Msg("sign-in recorded")
	return rec, nil
}

func (l *Ledger) append(op string, line []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return apperr.IO(op, fmt.Errorf("failed to open sign-in log: %w", err))
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return apperr.IO(op, fmt.Errorf("failed to stat sign-in log: %w", err))
	}
	size := info.Size()

	n, err := f.Write(line)
	if err == nil && n != len(line) {
		err = fmt.Errorf("short write: %d of %d bytes", n, len(line))
	}
	if err == nil {
		err = f.Sync()
	}
	if err != nil {
		if n > 0 {
			if terr := f.Truncate(size); terr != nil {
				l.log.Error().Err(terr).Int64("size", size).Msg("failed to roll back partial sign-in record")
			}
		}
		return apperr.IO(op, fmt.Errorf("failed to append sign-in record: %w", err))
	}
	return nil
}

// Entry is one line of the sign-in log split into its fields.
type Entry struct {
	ID         string
	Name       string
	Role       string
	SignedInAt string
}

// Format renders the entry as a report line.
func (e Entry) Format() string {
	return fmt.Sprintf("ID: %-10s Name: %-15s Type: %-7s Signed In At: %s", e.ID, e.Name, e.Role, e.SignedInAt)
}

// Record parses the entry's role and timestamp.
func (e Entry) Record() (entities.SignInRecord, error) {
	ts, err := time.ParseInLocation(TimestampLayout, e.SignedInAt, time.Local)
	if err != nil {
		return entities.SignInRecord{}, err
	}
	return entities.SignInRecord{ID: e.ID, Name: e.Name, Role: entities.SignInRole(e.Role), Timestamp: ts}, nil
}

// Entries returns the log's lines in append order. Lines with fewer than
// four fields are skipped. A missing log yields nothing. The file is read
// afresh each time the sequence is ranged over.
func (l *Ledger) Entries() iter.Seq2[Entry, error] {
	const op = "GenerateReport"
	return func(yield func(Entry, error) bool) {
		f, err := os.Open(l.path)
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		if err != nil {
			yield(Entry{}, apperr.IO(op, fmt.Errorf("failed to open sign-in log: %w", err)))
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 4096), maxLineBytes)
		for scanner.Scan() {
			fields := strings.Split(strings.TrimRight(scanner.Text(), "\r"), ",")
			if len(fields) < 4 {
				continue
			}
			entry := Entry{
				ID:         strings.TrimSpace(fields[0]),
				Name:       strings.TrimSpace(fields[1]),
				Role:       strings.TrimSpace(fields[2]),
				SignedInAt: strings.TrimSpace(fields[3]),
			}
			if !yield(entry, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(Entry{}, apperr.IO(op, fmt.Errorf("failed to read sign-in log: %w", err)))
		}
	}
}

// GenerateReport returns every sign-in formatted as a report line.
func (l *Ledger) GenerateReport() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for entry, err := range l.Entries() {
			if err != nil {
				yield("", err)
				return
			}
			if !yield(entry.Format(), nil) {
				return
			}
		}
	}
}

// Records returns every sign-in as a parsed record. Lines whose timestamp
// does not parse are skipped.
func (l *Ledger) Records() iter.Seq2[entities.SignInRecord, error] {
	return func(yield func(entities.SignInRecord, error) bool) {
		for entry, err := range l.Entries() {
			if err != nil {
				yield(entities.SignInRecord{}, err)
				return
			}
			rec, perr := entry.Record()
			if perr != nil {
				l.log.Debug().Str("timestamp", entry.SignedInAt).Msg("skipping sign-in with malformed timestamp")
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}
