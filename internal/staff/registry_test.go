package staff

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/librarydesk/internal/apperr"
	"github.com/mrlokans/librarydesk/internal/config"
	"github.com/mrlokans/librarydesk/internal/database"
	"github.com/mrlokans/librarydesk/internal/entities"
)

func setupRegistry(t *testing.T) *Registry {
	t.Helper()
	db, err := database.NewDatabase(config.Database{
		Driver:       config.DriverSQLite,
		Path:         filepath.Join(t.TempDir(), "staff.db"),
		StoreTimeout: 5 * time.Second,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRegistry(db)
}

func bob() StaffInput {
	return StaffInput{StaffID: 3, Name: "Bob", Age: 41, Email: "bob@library.org", Position: entities.PositionLibrarian}
}

func TestRegistry_AddStaff(t *testing.T) {
	ctx := context.Background()

	t.Run("registers and lists", func(t *testing.T) {
		r := setupRegistry(t)
		s, err := r.AddStaff(ctx, bob())
		require.NoError(t, err)
		assert.Equal(t, uint(3), s.StaffID)

		rows, err := database.Collect(r.ListStaff(ctx))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Bob", rows[0].Name)
		assert.Equal(t, entities.PositionLibrarian, rows[0].Position)
	})

	t.Run("duplicate staff id", func(t *testing.T) {
		r := setupRegistry(t)
		_, err := r.AddStaff(ctx, bob())
		require.NoError(t, err)

		_, err = r.AddStaff(ctx, bob())
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperr.ErrDuplicate), "got %v", err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		r := setupRegistry(t)
		tests := []struct {
			name   string
			mutate func(*StaffInput)
		}{
			{"zero id", func(in *StaffInput) { in.StaffID = 0 }},
			{"blank name", func(in *StaffInput) { in.Name = " " }},
			{"empty email", func(in *StaffInput) { in.Email = "" }},
			{"zero age", func(in *StaffInput) { in.Age = 0 }},
			{"unknown position", func(in *StaffInput) { in.Position = "Janitor" }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				in := bob()
				tt.mutate(&in)
				_, err := r.AddStaff(ctx, in)
				assert.True(t, errors.Is(err, apperr.ErrValidation), "got %v", err)
			})
		}
	})
}

func TestRegistry_ListStaffOrder(t *testing.T) {
	ctx := context.Background()
	r := setupRegistry(t)

	for _, id := range []uint{9, 2, 5} {
		in := bob()
		in.StaffID = id
		_, err := r.AddStaff(ctx, in)
		require.NoError(t, err)
	}

	rows, err := database.Collect(r.ListStaff(ctx))
	require.NoError(t, err)
	var ids []uint
	for _, s := range rows {
		ids = append(ids, s.StaffID)
	}
	assert.Equal(t, []uint{2, 5, 9}, ids)
}
