package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/banshee-data/pitwall/internal/monitoring"
)

func init() {
	monitoring.SetLogger(nil)
}

// newTestDB opens a migrated, seeded embedded database in a temp dir.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := OpenDev(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenDev failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

type resultRow struct {
	Driver   int64
	Position int64
	Grid     int64
	Points   float64
	Status   int64
	RaceRank *int64
}

// raceResults returns the rows of one race keyed by driver id.
func raceResults(t *testing.T, database *DB, race int64) map[int64]resultRow {
	t.Helper()
	rows, err := database.QueryContext(context.Background(), `
		SELECT Driver_ID, Position_Order, Grid, Points, Status_ID, RaceRank
		FROM Results WHERE Race_ID = ?`, race)
	if err != nil {
		t.Fatalf("query race %d: %v", race, err)
	}
	defer rows.Close()

	out := map[int64]resultRow{}
	for rows.Next() {
		var r resultRow
		if err := rows.Scan(&r.Driver, &r.Position, &r.Grid, &r.Points, &r.Status, &r.RaceRank); err != nil {
			t.Fatalf("scan: %v", err)
		}
		out[r.Driver] = r
	}
	if err := rows.Err(); err != nil {
		t.Fatalf("rows: %v", err)
	}
	return out
}
