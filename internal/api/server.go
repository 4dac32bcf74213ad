package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"tailscale.com/tsweb"

	"github.com/banshee-data/pitwall/internal/httputil"
	"github.com/banshee-data/pitwall/internal/monitoring"
	"github.com/banshee-data/pitwall/internal/views"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// RequestIDHeader carries the id assigned to each request.
const RequestIDHeader = "X-Request-Id"

// maxFormBytes caps form and JSON bodies.
const maxFormBytes = 64 << 10

type Server struct {
	router *views.Router
	pages  *pageRenderer
}

func NewServer(router *views.Router) *Server {
	return &Server{
		router: router,
		pages:  newPageRenderer(),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware tags each request with an id and logs method, path,
// status and duration. An incoming X-Request-Id is kept.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms id=%s",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
			id,
		)
	})
}

// requireDebugAccess admits only the callers tsweb lets into /debug/:
// loopback, tailnet addresses and TS_ALLOW_DEBUG_IP.
func requireDebugAccess(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !tsweb.AllowDebugAccess(r) {
			monitoring.Logf("admin request from %s refused", r.RemoteAddr)
			httputil.Forbidden(w, "admin access denied")
			return
		}
		next(w, r)
	}
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/sections/", s.handleSection)
	mux.HandleFunc("/results/", s.handleResultsCommand)
	mux.HandleFunc("/admin/users", requireDebugAccess(s.handleCreateUser))

	mux.HandleFunc("/api/sections/", s.apiSection)
	mux.HandleFunc("/api/results/", s.apiResultsCommand)
	mux.HandleFunc("/api/admin/users", requireDebugAccess(s.apiCreateUser))
	mux.HandleFunc("/api/version", s.apiVersion)

	mux.HandleFunc("/charts/wdc", s.handleStandingsChart(views.SectionWDC, "Driver"))
	mux.HandleFunc("/charts/wcc", s.handleStandingsChart(views.SectionWCC, "Constructor"))
	return mux
}
