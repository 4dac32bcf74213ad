package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/pitwall/internal/httputil"
	"github.com/banshee-data/pitwall/internal/views"
)

// handleStandingsChart renders a championship table as a bar chart.
func (s *Server) handleStandingsChart(section views.Section, labelColumn string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w)
			return
		}
		view := s.router.Show(r.Context(), section, false)
		if view.Err != nil {
			httputil.InternalServerError(w, views.ErrorMessage(view.Err))
			return
		}

		standings := views.Standings(view.Table, labelColumn, "Total_Points")
		x := make([]string, 0, len(standings))
		y := make([]opts.BarData, 0, len(standings))
		for _, st := range standings {
			x = append(x, st.Name)
			y = append(y, opts.BarData{Value: st.Points})
		}

		subtitle := "no results"
		if sum := view.Summary; sum != nil {
			subtitle = fmt.Sprintf("entries=%d mean=%.1f median=%.1f stddev=%.1f", sum.Count, sum.Mean, sum.Median, sum.StdDev)
		}

		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: section.Title(), Width: "100%", Height: "640px"}),
			charts.WithTitleOpts(opts.Title{Title: section.Subheader(), Subtitle: subtitle}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithYAxisOpts(opts.YAxis{Name: "Points"}),
		)
		bar.SetXAxis(x).
			AddSeries("points", y,
				charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
			)

		page := components.NewPage()
		page.AddCharts(bar)

		var buf bytes.Buffer
		if err := page.Render(&buf); err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
			return
		}
		httputil.WriteHTML(w, http.StatusOK, buf.Bytes())
	}
}
