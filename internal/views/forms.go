package views

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// FormError reports a rejected form field.
type FormError struct {
	Field  string
	Reason string
}

func (e *FormError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Command names accepted by Execute.
const (
	CommandAdd    = "add"
	CommandPoints = "assign-points"
	CommandSwap   = "swap"
	CommandDelete = "delete"
	CommandRecalc = "recalculate-ranks"
)

// commandFields lists each command's form fields in procedure argument order.
var commandFields = map[string][]string{
	CommandAdd:    {"race_id", "driver_id", "constructor_id", "car_id", "position_order", "grid", "status_id"},
	CommandPoints: {"race_id"},
	CommandSwap:   {"race_id", "driver_a", "driver_b"},
	CommandDelete: {"race_id", "driver_id", "position_order"},
	CommandRecalc: {},
}

// Commands returns the result command names in menu order.
func Commands() []string {
	return []string{CommandAdd, CommandPoints, CommandSwap, CommandDelete, CommandRecalc}
}

// CommandFields returns the form fields of a command, or false if the
// command is unknown.
func CommandFields(command string) ([]string, bool) {
	f, ok := commandFields[command]
	return f, ok
}

// ResultEntry is the input of add_result.
type ResultEntry struct {
	Race          int64 `json:"race_id"`
	Driver        int64 `json:"driver_id"`
	Constructor   int64 `json:"constructor_id"`
	Car           int64 `json:"car_id"`
	PositionOrder int64 `json:"position_order"`
	Grid          int64 `json:"grid"`
	Status        int64 `json:"status_id"`
}

// SwapRequest is the input of swap_driver_positions.
type SwapRequest struct {
	Race    int64 `json:"race_id"`
	DriverA int64 `json:"driver_a"`
	DriverB int64 `json:"driver_b"`
}

// DeleteRequest is the input of delete_result.
type DeleteRequest struct {
	Race          int64 `json:"race_id"`
	Driver        int64 `json:"driver_id"`
	PositionOrder int64 `json:"position_order"`
}

// UserRequest is the input of the admin user form.
type UserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Privilege string `json:"privilege"`
}

// positiveInt reads a required integer field that must be at least 1.
func positiveInt(form url.Values, field string) (int64, error) {
	raw := strings.TrimSpace(form.Get(field))
	if raw == "" {
		return 0, &FormError{Field: field, Reason: "required"}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &FormError{Field: field, Reason: "must be a whole number"}
	}
	if n < 1 {
		return 0, &FormError{Field: field, Reason: "must be at least 1"}
	}
	return n, nil
}

func positiveInts(form url.Values, fields []string) ([]int64, error) {
	out := make([]int64, len(fields))
	for i, f := range fields {
		n, err := positiveInt(form, f)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func ParseResultEntry(form url.Values) (ResultEntry, error) {
	v, err := positiveInts(form, commandFields[CommandAdd])
	if err != nil {
		return ResultEntry{}, err
	}
	return ResultEntry{
		Race: v[0], Driver: v[1], Constructor: v[2], Car: v[3],
		PositionOrder: v[4], Grid: v[5], Status: v[6],
	}, nil
}

func ParseRace(form url.Values) (int64, error) {
	return positiveInt(form, "race_id")
}

func ParseSwapRequest(form url.Values) (SwapRequest, error) {
	v, err := positiveInts(form, commandFields[CommandSwap])
	if err != nil {
		return SwapRequest{}, err
	}
	return SwapRequest{Race: v[0], DriverA: v[1], DriverB: v[2]}, nil
}

func ParseDeleteRequest(form url.Values) (DeleteRequest, error) {
	v, err := positiveInts(form, commandFields[CommandDelete])
	if err != nil {
		return DeleteRequest{}, err
	}
	return DeleteRequest{Race: v[0], Driver: v[1], PositionOrder: v[2]}, nil
}

// ParseUserRequest checks presence only; the gateway applies the
// identifier and privilege allow-lists.
func ParseUserRequest(form url.Values) (UserRequest, error) {
	req := UserRequest{
		Username:  strings.TrimSpace(form.Get("username")),
		Password:  form.Get("password"),
		Privilege: strings.TrimSpace(form.Get("privilege")),
	}
	if req.Username == "" {
		return req, &FormError{Field: "username", Reason: "required"}
	}
	if req.Privilege == "" {
		return req, &FormError{Field: "privilege", Reason: "required"}
	}
	return req, nil
}

// FormFromArgs maps positional arguments onto a command's fields.
func FormFromArgs(command string, args []string) (url.Values, error) {
	fields, ok := commandFields[command]
	if !ok {
		return nil, fmt.Errorf("unknown command %q", command)
	}
	if len(args) != len(fields) {
		return nil, fmt.Errorf("%s takes %d arguments (%s), got %d",
			command, len(fields), strings.Join(fields, " "), len(args))
	}
	form := url.Values{}
	for i, f := range fields {
		form.Set(f, args[i])
	}
	return form, nil
}
