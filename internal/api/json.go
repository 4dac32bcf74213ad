package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/banshee-data/pitwall/internal/db"
	"github.com/banshee-data/pitwall/internal/httputil"
	"github.com/banshee-data/pitwall/internal/version"
	"github.com/banshee-data/pitwall/internal/views"
)

type sectionResponse struct {
	Section string         `json:"section"`
	Title   string         `json:"title"`
	Columns []string       `json:"columns"`
	Rows    [][]any        `json:"rows"`
	Message string         `json:"message,omitempty"`
	Error   string         `json:"error,omitempty"`
	Summary *views.Summary `json:"summary,omitempty"`
}

type outcomeResponse struct {
	Command string    `json:"command"`
	Message string    `json:"message"`
	Results *db.Table `json:"results,omitempty"`
	Error   string    `json:"error,omitempty"`
}

func (s *Server) apiSection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	section, err := views.ParseSection(strings.TrimPrefix(r.URL.Path, "/api/sections/"))
	if err != nil {
		httputil.NotFound(w, err.Error())
		return
	}

	view := s.router.Show(r.Context(), section, r.URL.Query().Get("run") == "1")
	resp := sectionResponse{
		Section: section.Slug(),
		Title:   section.Title(),
		Columns: []string{},
		Rows:    [][]any{},
		Message: view.Message,
		Summary: view.Summary,
	}
	if view.Table != nil {
		resp.Columns = view.Table.Columns
		resp.Rows = view.Table.Rows
	}
	status := http.StatusOK
	if view.Err != nil {
		resp.Error = views.ErrorMessage(view.Err)
		status = http.StatusInternalServerError
	}
	httputil.WriteJSON(w, status, resp)
}

func (s *Server) apiResultsCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	command := strings.TrimPrefix(r.URL.Path, "/api/results/")
	if _, ok := views.CommandFields(command); !ok {
		httputil.NotFound(w, fmt.Sprintf("unknown command %q", command))
		return
	}
	form, err := readForm(w, r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	out, err := s.router.Execute(r.Context(), command, form)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	writeOutcome(w, out)
}

func (s *Server) apiCreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	form, err := readForm(w, r)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	req, err := views.ParseUserRequest(form)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	writeOutcome(w, s.router.CreateUser(r.Context(), req))
}

func (s *Server) apiVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, version.Current())
}

func writeOutcome(w http.ResponseWriter, out views.Outcome) {
	resp := outcomeResponse{Command: out.Command, Message: out.Message, Results: out.Results}
	if out.Err != nil {
		resp.Error = out.Message
		httputil.WriteJSON(w, http.StatusUnprocessableEntity, resp)
		return
	}
	if out.RefreshErr != nil {
		resp.Error = views.ErrorMessage(out.RefreshErr)
	}
	httputil.WriteJSONOK(w, resp)
}

// readForm accepts either an urlencoded form or a flat JSON object whose
// values are numbers or strings.
func readForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "application/json" {
		if err := r.ParseForm(); err != nil {
			return nil, errors.New("invalid form body")
		}
		return r.PostForm, nil
	}

	var body map[string]any
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	form := url.Values{}
	for k, v := range body {
		switch x := v.(type) {
		case json.Number:
			form.Set(k, x.String())
		case string:
			form.Set(k, x)
		default:
			return nil, fmt.Errorf("%s: expected a number or string", k)
		}
	}
	return form, nil
}
