package views

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/banshee-data/pitwall/internal/db"
	"github.com/banshee-data/pitwall/internal/monitoring"
)

const (
	msgNoResults = "No results found in database."
	msgNoDrivers = "No drivers matched the criteria."
	msgRunNested = "Run the query to list drivers who scored points in every race they entered."
)

// Gateway is the subset of *db.DB the router needs.
type Gateway interface {
	RunQuery(ctx context.Context, query string, args ...any) (*db.Table, error)
	CallProcedure(ctx context.Context, name string, args ...any) error
	CreateUser(ctx context.Context, username, password, privilege string) error
}

// View is one rendered section.
type View struct {
	Section Section
	Table   *db.Table
	Message string
	Summary *Summary
	Err     error
}

// Outcome is the result of a command. Results is the refreshed results
// table and is nil when the command failed.
type Outcome struct {
	Command    string
	Message    string
	Results    *db.Table
	Err        error
	RefreshErr error
}

// Router dispatches sections and commands to the gateway.
type Router struct {
	gw      Gateway
	queries Queries
}

// NewRouter serves sections and commands through gw.
func NewRouter(gw Gateway, queries Queries) *Router {
	return &Router{gw: gw, queries: queries}
}

// Show renders a section. The nested query only runs when run is set.
func (r *Router) Show(ctx context.Context, s Section, run bool) View {
	v := View{Section: s}
	if !s.HasQuery() {
		return v
	}
	if s == SectionNestedQuery && !run {
		v.Message = msgRunNested
		return v
	}

	v.Table, v.Err = r.gw.RunQuery(ctx, r.queries.For(s))
	if v.Err != nil {
		return v
	}
	if v.Table.Empty() {
		switch s {
		case SectionResults:
			v.Message = msgNoResults
		case SectionNestedQuery:
			v.Message = msgNoDrivers
		}
	}
	if s.IsStandings() {
		v.Summary = Summarize(v.Table, "Total_Points")
	}
	return v
}

// RefreshResults re-issues the results query.
func (r *Router) RefreshResults(ctx context.Context) (*db.Table, error) {
	return r.gw.RunQuery(ctx, r.queries.Results)
}

func (r *Router) call(ctx context.Context, command, success, proc string, args ...any) Outcome {
	out := Outcome{Command: command}
	if err := r.gw.CallProcedure(ctx, proc, args...); err != nil {
		out.Err = err
		out.Message = errorMessage(err)
		return out
	}
	out.Message = success
	out.Results, out.RefreshErr = r.RefreshResults(ctx)
	if out.RefreshErr != nil {
		monitoring.Logf("refresh after %s failed: %v", command, out.RefreshErr)
	}
	return out
}

// AddResult inserts one result row via add_result.
func (r *Router) AddResult(ctx context.Context, e ResultEntry) Outcome {
	return r.call(ctx, CommandAdd, "Result added successfully!", db.ProcAddResult,
		e.Race, e.Driver, e.Constructor, e.Car, e.PositionOrder, e.Grid, e.Status)
}

// AssignPoints awards points for a race from its finishing order.
func (r *Router) AssignPoints(ctx context.Context, race int64) Outcome {
	return r.call(ctx, CommandPoints, fmt.Sprintf("Points assigned successfully for Race %d!", race),
		db.ProcAssignPoints, race)
}

// SwapPositions exchanges two drivers' finishing positions in a race.
func (r *Router) SwapPositions(ctx context.Context, req SwapRequest) Outcome {
	return r.call(ctx, CommandSwap, "Swapped successfully!", db.ProcSwapPositions,
		req.Race, req.DriverA, req.DriverB)
}

// DeleteResult removes the result matching race, driver and position.
func (r *Router) DeleteResult(ctx context.Context, req DeleteRequest) Outcome {
	return r.call(ctx, CommandDelete, "Result deleted successfully!", db.ProcDeleteResult,
		req.Race, req.Driver, req.PositionOrder)
}

// RecalculateRanks rebuilds RaceRank for every race.
func (r *Router) RecalculateRanks(ctx context.Context) Outcome {
	return r.call(ctx, CommandRecalc, "Race ranks recalculated successfully!", db.ProcRecalculateRanks)
}

// CreateUser runs the admin form. No results refresh follows.
func (r *Router) CreateUser(ctx context.Context, req UserRequest) Outcome {
	out := Outcome{Command: "create-user"}
	if err := r.gw.CreateUser(ctx, req.Username, req.Password, req.Privilege); err != nil {
		out.Err = err
		out.Message = errorMessage(err)
		return out
	}
	out.Message = fmt.Sprintf("User '%s' created with %s privilege.", req.Username, req.Privilege)
	return out
}

// Execute parses a form for a named command and runs it. The returned error
// is non-nil only for an unknown command or a *FormError; database failures
// are reported in the Outcome.
func (r *Router) Execute(ctx context.Context, command string, form url.Values) (Outcome, error) {
	switch command {
	case CommandAdd:
		e, err := ParseResultEntry(form)
		if err != nil {
			return Outcome{Command: command}, err
		}
		return r.AddResult(ctx, e), nil
	case CommandPoints:
		race, err := ParseRace(form)
		if err != nil {
			return Outcome{Command: command}, err
		}
		return r.AssignPoints(ctx, race), nil
	case CommandSwap:
		req, err := ParseSwapRequest(form)
		if err != nil {
			return Outcome{Command: command}, err
		}
		return r.SwapPositions(ctx, req), nil
	case CommandDelete:
		req, err := ParseDeleteRequest(form)
		if err != nil {
			return Outcome{Command: command}, err
		}
		return r.DeleteResult(ctx, req), nil
	case CommandRecalc:
		return r.RecalculateRanks(ctx), nil
	}
	return Outcome{Command: command}, fmt.Errorf("unknown command %q", command)
}

// ErrorMessage is the user-facing text for a gateway or form error.
func ErrorMessage(err error) string { return errorMessage(err) }

func errorMessage(err error) string {
	var qe *db.QueryError
	var ce *db.CommandError
	switch {
	case errors.As(err, &qe):
		return qe.Message()
	case errors.As(err, &ce):
		return ce.Message()
	}
	return err.Error()
}
