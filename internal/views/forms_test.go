package views

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResultEntry(t *testing.T) {
	form := url.Values{
		"race_id": {"1"}, "driver_id": {"2"}, "constructor_id": {"3"}, "car_id": {"4"},
		"position_order": {"5"}, "grid": {"6"}, "status_id": {"7"},
	}
	e, err := ParseResultEntry(form)
	require.NoError(t, err)
	assert.Equal(t, ResultEntry{Race: 1, Driver: 2, Constructor: 3, Car: 4, PositionOrder: 5, Grid: 6, Status: 7}, e)
}

func TestPositiveInt(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		want   int64
		reason string
	}{
		{"valid", "12", 12, ""},
		{"trimmed", " 3 ", 3, ""},
		{"missing", "", 0, "required"},
		{"zero", "0", 0, "must be at least 1"},
		{"negative", "-4", 0, "must be at least 1"},
		{"fraction", "1.5", 0, "must be a whole number"},
		{"text", "abc", 0, "must be a whole number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := positiveInt(url.Values{"race_id": {tt.value}}, "race_id")
			if tt.reason == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var fe *FormError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, "race_id", fe.Field)
			assert.Equal(t, tt.reason, fe.Reason)
		})
	}
}

func TestParseUserRequest(t *testing.T) {
	req, err := ParseUserRequest(url.Values{"username": {" bob "}, "password": {"p w"}, "privilege": {"select"}})
	require.NoError(t, err)
	assert.Equal(t, UserRequest{Username: "bob", Password: "p w", Privilege: "select"}, req)

	_, err = ParseUserRequest(url.Values{"privilege": {"ALL"}})
	var fe *FormError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "username", fe.Field)
}

func TestFormFromArgs(t *testing.T) {
	form, err := FormFromArgs(CommandSwap, []string{"1", "2", "3"})
	require.NoError(t, err)
	assert.Equal(t, "3", form.Get("driver_b"))

	_, err = FormFromArgs(CommandSwap, []string{"1"})
	assert.ErrorContains(t, err, "swap takes 3 arguments")

	_, err = FormFromArgs("unknown", nil)
	assert.Error(t, err)
}

func TestParseSection(t *testing.T) {
	for _, s := range Sections() {
		got, err := ParseSection(s.Slug())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	got, err := ParseSection("Nested Query")
	require.NoError(t, err)
	assert.Equal(t, SectionNestedQuery, got)

	_, err = ParseSection("pit-lane")
	assert.Error(t, err)
}
