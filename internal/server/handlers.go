package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Kevdacosta07/CarbWeb/internal/analyzer"
)

// maxBodyBytes bounds a POST /api/analyze body.
const maxBodyBytes = 16 << 10

// Analyzer runs one page analysis.
type Analyzer interface {
	Analyze(ctx context.Context, req analyzer.Request) (*analyzer.Result, error)
}

// AnalyzeRequest is the POST body of /api/analyze.
type AnalyzeRequest struct {
	URL             string `json:"url"`
	Strategy        string `json:"strategy,omitempty"`
	MonthlyVisitors int    `json:"monthlyVisitors,omitempty"`
}

// ErrorResponse is the error envelope of every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

var errBadVisitors = errors.New("monthlyVisitors must be an integer")

// handleAnalyze serves both GET (query parameters) and POST (JSON body).
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var (
		req analyzer.Request
		err error
	)
	switch r.Method {
	case http.MethodGet:
		req, err = requestFromQuery(r)
	case http.MethodPost:
		req, err = requestFromBody(r)
	default:
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		kind := analyzer.KindOf(err)
		msg := err.Error()
		if kind == analyzer.KindInternal {
			msg = "internal error"
		}
		writeError(w, msg, kind.HTTPStatus())
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func requestFromQuery(r *http.Request) (analyzer.Request, error) {
	q := r.URL.Query()
	req := analyzer.Request{
		URL:      q.Get("url"),
		Strategy: q.Get("strategy"),
	}
	if v := strings.TrimSpace(q.Get("monthlyVisitors")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return analyzer.Request{}, errBadVisitors
		}
		req.MonthlyVisitors = n
	}
	return req, nil
}

func requestFromBody(r *http.Request) (analyzer.Request, error) {
	var body AnalyzeRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return analyzer.Request{}, errors.New("invalid request body")
	}
	return analyzer.Request{
		URL:             body.URL,
		Strategy:        body.Strategy,
		MonthlyVisitors: body.MonthlyVisitors,
	}, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, ErrorResponse{Error: message, Code: code})
}
