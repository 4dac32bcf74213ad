package db

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pitwall/internal/config"
)

func TestLatestMigrationVersion(t *testing.T) {
	v, err := LatestMigrationVersion(MigrationsFS())
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
}

func TestMigrateDownAndUp(t *testing.T) {
	database := newTestDB(t)
	fsys := MigrationsFS()

	version, dirty, err := database.MigrateVersion(fsys)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	require.NoError(t, database.MigrateDown(fsys))
	table, err := database.RunQuery(context.Background(), "SELECT * FROM Drivers")
	require.NoError(t, err)
	assert.True(t, table.Empty(), "sample season should be gone")

	require.NoError(t, database.MigrateUp(fsys))
	table, err = database.RunQuery(context.Background(), "SELECT * FROM Drivers")
	require.NoError(t, err)
	assert.Len(t, table.Rows, 5)

	// already at latest: no change is not an error
	assert.NoError(t, database.MigrateUp(fsys))
}

func TestMigrate_RefusesMySQL(t *testing.T) {
	database, err := Open(config.EmptyConfig())
	require.NoError(t, err)
	defer database.Close()

	err = database.MigrateUp(MigrationsFS())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedded sqlite schema only")
}

func TestRunMigrateCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		input   string
		want    string
		wantErr bool
	}{
		{"status", []string{"status"}, "", "up to date", false},
		{"up", []string{"up"}, "", "Current version: 2", false},
		{"down", []string{"down"}, "", "Current version: 1", false},
		{"version", []string{"version", "1"}, "", "Migrated to version 1", false},
		{"force aborted", []string{"force", "1"}, "n\n", "Aborted", false},
		{"force confirmed", []string{"force", "2"}, "y\n", "forced to 2", false},
		{"help", []string{"help"}, "", "Usage: pitwall", false},
		{"missing action", nil, "", "Commands:", true},
		{"unknown action", []string{"sideways"}, "", "Commands:", true},
		{"bad version", []string{"version", "x"}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			database := newTestDB(t)
			var out bytes.Buffer

			err := RunMigrateCommand(database, tt.args, strings.NewReader(tt.input), &out)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, out.String(), tt.want)
		})
	}
}
