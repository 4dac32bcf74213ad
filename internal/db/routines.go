package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// PointsTable is the points awarded by finishing position, first to tenth.
var PointsTable = []int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1}

// Stored procedure names, shared by both backends.
const (
	ProcAddResult        = "add_result"
	ProcAssignPoints     = "assign_points_for_race"
	ProcSwapPositions    = "swap_driver_positions"
	ProcDeleteResult     = "delete_result"
	ProcRecalculateRanks = "RecalculateAllRaceRanks"
)

type routine struct {
	arity int
	fn    func(ctx context.Context, tx *sql.Tx, args []int64) error
}

// defaultRoutines are the embedded backend's versions of the server-side
// procedures. Each runs inside the caller's transaction.
func defaultRoutines() map[string]routine {
	return map[string]routine{
		ProcAddResult:        {arity: 7, fn: addResult},
		ProcAssignPoints:     {arity: 1, fn: assignPointsForRace},
		ProcSwapPositions:    {arity: 3, fn: swapDriverPositions},
		ProcDeleteResult:     {arity: 3, fn: deleteResult},
		ProcRecalculateRanks: {arity: 0, fn: recalculateAllRaceRanks},
	}
}

// args: race, driver, constructor, car, positionOrder, grid, status
func addResult(ctx context.Context, tx *sql.Tx, args []int64) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO Results (
			Race_ID, Driver_ID, Constructor_ID, Car_ID,
			Position_Order, Grid, Points, Status_ID, RaceRank
		) VALUES (?, ?, ?, ?, ?, ?, 0, ?, NULL)`,
		args[0], args[1], args[2], args[3], args[4], args[5], args[6],
	)
	return err
}

func pointsCase() string {
	var b strings.Builder
	b.WriteString("CASE Position_Order")
	for i, p := range PointsTable {
		fmt.Fprintf(&b, " WHEN %d THEN %d", i+1, p)
	}
	b.WriteString(" ELSE 0 END")
	return b.String()
}

// args: race
func assignPointsForRace(ctx context.Context, tx *sql.Tx, args []int64) error {
	race := args[0]
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM Races WHERE Race_ID = ?`, race).Scan(&n); err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("race %d does not exist", race)
	}
	_, err := tx.ExecContext(ctx, `UPDATE Results SET Points = `+pointsCase()+` WHERE Race_ID = ?`, race)
	return err
}

// args: race, driverA, driverB
func swapDriverPositions(ctx context.Context, tx *sql.Tx, args []int64) error {
	race, a, b := args[0], args[1], args[2]
	if a == b {
		return fmt.Errorf("cannot swap driver %d with itself", a)
	}

	position := func(driver int64) (int64, error) {
		var pos int64
		err := tx.QueryRowContext(ctx,
			`SELECT Position_Order FROM Results WHERE Race_ID = ? AND Driver_ID = ?`,
			race, driver,
		).Scan(&pos)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("driver %d has no result in race %d", driver, race)
		}
		return pos, err
	}

	posA, err := position(a)
	if err != nil {
		return err
	}
	posB, err := position(b)
	if err != nil {
		return err
	}

	update := `UPDATE Results SET Position_Order = ? WHERE Race_ID = ? AND Driver_ID = ?`
	if _, err := tx.ExecContext(ctx, update, posB, race, a); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, update, posA, race, b)
	return err
}

// args: race, driver, positionOrder
func deleteResult(ctx context.Context, tx *sql.Tx, args []int64) error {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM Results WHERE Race_ID = ? AND Driver_ID = ? AND Position_Order = ?`,
		args[0], args[1], args[2],
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no result for race %d, driver %d at position %d", args[0], args[1], args[2])
	}
	return nil
}

// RaceRank becomes the 1-based rank of Position_Order within each race.
func recalculateAllRaceRanks(ctx context.Context, tx *sql.Tx, _ []int64) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE Results SET RaceRank = (
			SELECT COUNT(*) FROM Results r2
			WHERE r2.Race_ID = Results.Race_ID
			  AND r2.Position_Order <= Results.Position_Order
		)`)
	return err
}
