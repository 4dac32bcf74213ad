package views

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/pitwall/internal/db"
)

// Summary describes the spread of a standings column.
type Summary struct {
	Count  int     `json:"count"`
	Total  float64 `json:"total"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"stddev"`
}

// Standing is one row of a championship table.
type Standing struct {
	Name   string
	Points float64
}

// Summarize computes a Summary over a numeric column. It returns nil when
// the column is missing or the table is empty.
func Summarize(t *db.Table, column string) *Summary {
	xs := columnFloats(t, column)
	if len(xs) == 0 {
		return nil
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	s := &Summary{
		Count:  len(xs),
		Total:  floats.Sum(xs),
		Mean:   stat.Mean(xs, nil),
		Median: median(sorted),
	}
	if len(xs) > 1 {
		s.StdDev = stat.StdDev(xs, nil)
	}
	return s
}

// Standings pairs a label column with a points column, in table order.
func Standings(t *db.Table, labelColumn, pointsColumn string) []Standing {
	if t == nil || t.ColumnIndex(labelColumn) < 0 || t.ColumnIndex(pointsColumn) < 0 {
		return nil
	}
	out := make([]Standing, 0, len(t.Rows))
	for i := range t.Rows {
		label, _ := t.Value(i, labelColumn)
		pts, _ := t.Value(i, pointsColumn)
		f, _ := toFloat(pts)
		out = append(out, Standing{Name: toLabel(label), Points: f})
	}
	return out
}

func columnFloats(t *db.Table, column string) []float64 {
	if t == nil || t.ColumnIndex(column) < 0 {
		return nil
	}
	xs := make([]float64, 0, len(t.Rows))
	for i := range t.Rows {
		v, _ := t.Value(i, column)
		if f, ok := toFloat(v); ok {
			xs = append(xs, f)
		}
	}
	return xs
}

// median expects sorted input. An even count averages the two middle values.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, !math.IsNaN(x)
	case float32:
		return float64(x), true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(string(x), 64)
		return f, err == nil
	}
	return 0, false
}

func toLabel(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return ""
}
