package api

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/banshee-data/pitwall/internal/db"
	"github.com/banshee-data/pitwall/internal/httputil"
	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/security"
	"github.com/banshee-data/pitwall/internal/views"
)

//go:embed templates/*.html
var templateFS embed.FS

var commandTitles = map[string]string{
	views.CommandAdd:    "Add Result",
	views.CommandPoints: "Assign Points",
	views.CommandSwap:   "Swap Driver Positions",
	views.CommandDelete: "Delete Result",
	views.CommandRecalc: "Recalculate Race Ranks",
}

var fieldLabels = map[string]string{
	"race_id":        "Race ID",
	"driver_id":      "Driver ID",
	"constructor_id": "Constructor ID",
	"car_id":         "Car ID",
	"position_order": "Position Order",
	"grid":           "Grid",
	"status_id":      "Status ID",
	"driver_a":       "Driver A ID",
	"driver_b":       "Driver B ID",
}

type formField struct {
	Name  string
	Label string
}

type commandForm struct {
	Command string
	Title   string
	Fields  []formField
}

type pageData struct {
	Sections   []views.Section
	Current    views.Section
	View       views.View
	Outcome    *views.Outcome
	FormError  string
	Table      *db.Table
	Forms      []commandForm
	Privileges []security.Privilege
}

type pageRenderer struct {
	tmpl  *template.Template
	forms []commandForm
}

func newPageRenderer() *pageRenderer {
	funcs := template.FuncMap{
		"cell":         formatCell,
		"errorMessage": views.ErrorMessage,
	}
	tmpl := template.Must(template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))

	var forms []commandForm
	for _, c := range views.Commands() {
		fields, _ := views.CommandFields(c)
		f := commandForm{Command: c, Title: commandTitles[c]}
		for _, name := range fields {
			f.Fields = append(f.Fields, formField{Name: name, Label: fieldLabels[name]})
		}
		forms = append(forms, f)
	}
	return &pageRenderer{tmpl: tmpl, forms: forms}
}

func (p *pageRenderer) render(w http.ResponseWriter, status int, data pageData) {
	data.Sections = views.Sections()
	data.Forms = p.forms
	data.Privileges = security.Privileges
	if data.Table == nil {
		data.Table = visibleTable(data.View.Table)
	}

	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, "page.html", data); err != nil {
		monitoring.Logf("render %s: %v", data.Current.Slug(), err)
		httputil.InternalServerError(w, "failed to render page")
		return
	}
	httputil.WriteHTML(w, status, buf.Bytes())
}

// visibleTable drops tables with no columns, which only failed queries
// produce.
func visibleTable(t *db.Table) *db.Table {
	if t == nil || len(t.Columns) == 0 {
		return nil
	}
	return t
}

func formatCell(v any) string {
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
	case bool:
		return strconv.FormatBool(x)
	}
	return ""
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/sections/"+views.SectionResults.Slug(), http.StatusFound)
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	section, err := views.ParseSection(strings.TrimPrefix(r.URL.Path, "/sections/"))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	run := r.URL.Query().Get("run") == "1"
	view := s.router.Show(r.Context(), section, run)
	s.pages.render(w, http.StatusOK, pageData{Current: section, View: view})
}

func (s *Server) handleResultsCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	command := strings.TrimPrefix(r.URL.Path, "/results/")
	if _, ok := views.CommandFields(command); !ok {
		http.NotFound(w, r)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "invalid form body")
		return
	}

	data := pageData{Current: views.SectionResultsManipulation}
	out, err := s.router.Execute(r.Context(), command, r.PostForm)
	var fe *views.FormError
	if errors.As(err, &fe) {
		data.FormError = fe.Error()
		s.pages.render(w, http.StatusBadRequest, data)
		return
	}
	data.Outcome = &out
	data.Table = visibleTable(out.Results)
	s.pages.render(w, http.StatusOK, data)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, "invalid form body")
		return
	}

	data := pageData{Current: views.SectionAdminOptions}
	req, err := views.ParseUserRequest(r.PostForm)
	if err != nil {
		data.FormError = err.Error()
		s.pages.render(w, http.StatusBadRequest, data)
		return
	}
	out := s.router.CreateUser(r.Context(), req)
	data.Outcome = &out
	s.pages.render(w, http.StatusOK, data)
}
