package app_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/daftar/internal/action"
	"github.com/MrJamesThe3rd/daftar/internal/app"
	"github.com/MrJamesThe3rd/daftar/internal/backup"
	"github.com/MrJamesThe3rd/daftar/internal/config"
	"github.com/MrJamesThe3rd/daftar/internal/entity"
)

func memoryConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{}
	cfg.Store.Driver = config.DriverMemory
	cfg.Backup.Dir = t.TempDir()

	return cfg
}

func TestNew_MemoryBackupRoundTrip(t *testing.T) {
	cfg := memoryConfig(t)

	a, err := app.New(t.Context(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })

	p, err := a.Gate.Propose(t.Context(), action.SourceText, &action.Person{
		Op:   action.OpAdd,
		Type: entity.PersonCustomer,
		Name: "Mohammed",
	})
	require.NoError(t, err)

	_, err = a.Gate.Confirm(t.Context(), p.Token)
	require.NoError(t, err)

	p, err = a.Gate.Propose(t.Context(), action.SourceText, &action.SystemControl{Command: action.CommandBackup})
	require.NoError(t, err)

	out, err := a.Gate.Confirm(t.Context(), p.Token)
	require.NoError(t, err)
	require.NotNil(t, out.Result)

	files, err := filepath.Glob(filepath.Join(cfg.Backup.Dir, "backups", "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	restored := memoryConfig(t)
	restored.Store.Seed = files[0]

	b, err := app.New(t.Context(), restored, nil)
	require.NoError(t, err)

	snap, err := b.Store.Snapshot(t.Context())
	require.NoError(t, err)
	require.Len(t, snap.Customers, 1)
	assert.Equal(t, "Mohammed", snap.Customers[0].Name)
}

func TestNew_SeedErrors(t *testing.T) {
	type testCase struct {
		name    string
		content string
	}

	tests := []testCase{
		{name: "NotJSON", content: "name,amount"},
		{name: "WrongVersion", content: `{"version": 7, "data": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := memoryConfig(t)
			cfg.Store.Seed = filepath.Join(t.TempDir(), "seed.json")
			require.NoError(t, os.WriteFile(cfg.Store.Seed, []byte(tt.content), 0o600))

			_, err := app.New(t.Context(), cfg, nil)
			assert.Error(t, err)
		})
	}

	t.Run("Missing", func(t *testing.T) {
		cfg := memoryConfig(t)
		cfg.Store.Seed = filepath.Join(t.TempDir(), uuid.NewString())

		_, err := app.New(t.Context(), cfg, nil)
		assert.Error(t, err)
	})
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := memoryConfig(t)
	cfg.Store.Driver = "sqlite"

	_, err := app.New(t.Context(), cfg, nil)
	assert.Error(t, err)
}

func TestNew_SeedFromBackupService(t *testing.T) {
	dir := t.TempDir()
	svc := backup.NewService(backup.DirUploader{Dir: dir})

	path, err := svc.Backup(t.Context(), &entity.Snapshot{
		Suppliers: []entity.Person{{ID: uuid.New(), Type: entity.PersonSupplier, Name: "Omar"}},
	})
	require.NoError(t, err)

	cfg := memoryConfig(t)
	cfg.Store.Seed = path

	a, err := app.New(t.Context(), cfg, nil)
	require.NoError(t, err)

	snap, err := a.Store.Snapshot(t.Context())
	require.NoError(t, err)
	assert.Len(t, snap.Suppliers, 1)
}
