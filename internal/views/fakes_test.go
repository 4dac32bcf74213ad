package views

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/pitwall/internal/db"
)

type call struct {
	name string
	args []any
}

type fakeGateway struct {
	queryErr error
	callErr  error
	userErr  error
	table    *db.Table
	calls    []call
	queries  int
}

func (f *fakeGateway) RunQuery(_ context.Context, query string, _ ...any) (*db.Table, error) {
	f.queries++
	if f.queryErr != nil {
		return db.EmptyTable(), &db.QueryError{Query: query, Err: f.queryErr}
	}
	if f.table == nil {
		return db.EmptyTable(), nil
	}
	return f.table, nil
}

func (f *fakeGateway) CallProcedure(_ context.Context, name string, args ...any) error {
	f.calls = append(f.calls, call{name, args})
	if f.callErr != nil {
		return &db.CommandError{Procedure: name, Err: f.callErr}
	}
	return nil
}

func (f *fakeGateway) CreateUser(_ context.Context, username, _, _ string) error {
	f.calls = append(f.calls, call{"create_user", []any{username}})
	if f.userErr != nil {
		return &db.CommandError{Procedure: "create_user", Err: f.userErr}
	}
	return nil
}

type plainNamer struct{}

func (plainNamer) DriverName(idExpr string) string { return "name(" + idExpr + ")" }

func TestCommands_PassArgumentsInProcedureOrder(t *testing.T) {
	gw := &fakeGateway{}
	r := NewRouter(gw, QueriesFor(plainNamer{}))
	ctx := context.Background()

	r.AddResult(ctx, ResultEntry{Race: 1, Driver: 2, Constructor: 3, Car: 4, PositionOrder: 5, Grid: 6, Status: 7})
	r.AssignPoints(ctx, 9)
	r.SwapPositions(ctx, SwapRequest{Race: 1, DriverA: 2, DriverB: 3})
	r.DeleteResult(ctx, DeleteRequest{Race: 1, Driver: 2, PositionOrder: 3})
	r.RecalculateRanks(ctx)

	want := []call{
		{db.ProcAddResult, []any{int64(1), int64(2), int64(3), int64(4), int64(5), int64(6), int64(7)}},
		{db.ProcAssignPoints, []any{int64(9)}},
		{db.ProcSwapPositions, []any{int64(1), int64(2), int64(3)}},
		{db.ProcDeleteResult, []any{int64(1), int64(2), int64(3)}},
		{db.ProcRecalculateRanks, nil},
	}
	require.Len(t, gw.calls, len(want))
	for i := range want {
		assert.Equal(t, want[i].name, gw.calls[i].name)
		assert.Len(t, gw.calls[i].args, len(want[i].args))
		for j := range want[i].args {
			assert.Equal(t, want[i].args[j], gw.calls[i].args[j])
		}
	}
	assert.Equal(t, 5, gw.queries, "each successful command refreshes once")
}

func TestCommand_FailureSkipsRefresh(t *testing.T) {
	gw := &fakeGateway{callErr: errors.New("Cannot add or update a child row")}
	r := NewRouter(gw, QueriesFor(plainNamer{}))

	out := r.SwapPositions(context.Background(), SwapRequest{Race: 1, DriverA: 1, DriverB: 2})
	assert.Error(t, out.Err)
	assert.Nil(t, out.Results)
	assert.Equal(t, "Database Error: Cannot add or update a child row", out.Message)
	assert.Zero(t, gw.queries)
}

func TestCommand_RefreshFailureKeepsSuccess(t *testing.T) {
	gw := &fakeGateway{queryErr: errors.New("connection reset")}
	r := NewRouter(gw, QueriesFor(plainNamer{}))

	out := r.RecalculateRanks(context.Background())
	assert.NoError(t, out.Err)
	assert.Equal(t, "Race ranks recalculated successfully!", out.Message)
	assert.Error(t, out.RefreshErr)
	assert.True(t, out.Results.Empty())
}

func TestShow_QueryErrorIsReported(t *testing.T) {
	gw := &fakeGateway{queryErr: errors.New("Table 'F1.Drivers' doesn't exist")}
	r := NewRouter(gw, QueriesFor(plainNamer{}))

	v := r.Show(context.Background(), SectionDrivers, false)
	require.Error(t, v.Err)
	assert.True(t, v.Table.Empty())
	assert.Equal(t, "SQL Error: Table 'F1.Drivers' doesn't exist", ErrorMessage(v.Err))
}

func TestShow_SectionsWithoutQueryDoNotTouchGateway(t *testing.T) {
	gw := &fakeGateway{}
	r := NewRouter(gw, QueriesFor(plainNamer{}))

	r.Show(context.Background(), SectionResultsManipulation, true)
	r.Show(context.Background(), SectionAdminOptions, true)
	r.Show(context.Background(), SectionNestedQuery, false)
	assert.Zero(t, gw.queries)
}

func TestCreateUser_Messages(t *testing.T) {
	gw := &fakeGateway{}
	r := NewRouter(gw, QueriesFor(plainNamer{}))

	out := r.CreateUser(context.Background(), UserRequest{Username: "analyst", Password: "x", Privilege: "SELECT"})
	require.NoError(t, out.Err)
	assert.Equal(t, "User 'analyst' created with SELECT privilege.", out.Message)
	assert.Zero(t, gw.queries)

	gw.userErr = errors.New("Access denied")
	out = r.CreateUser(context.Background(), UserRequest{Username: "analyst", Password: "x", Privilege: "SELECT"})
	assert.Equal(t, "Database Error: Access denied", out.Message)
}

func TestQueriesFor_UsesDriverNameExpression(t *testing.T) {
	q := QueriesFor(plainNamer{})
	assert.Contains(t, q.Results, "name(r.Driver_ID) AS Driver")
	assert.Contains(t, q.WDC, "name(d.Driver_ID) AS Driver")
	assert.Contains(t, q.WDC, "ORDER BY Total_Points DESC, d.Driver_ID ASC")
	assert.Contains(t, q.AlwaysScored, "RacesParticipated > 0")
	assert.Empty(t, q.For(SectionAdminOptions))
}
