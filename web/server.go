// Package web serves the localhost-only report UI. It reuses the session
// stored by the CLI and has no login or CSRF protection of its own.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"attendlog/api"
	"attendlog/attendance"
	"attendlog/report"
	"attendlog/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	errBadRequest = errors.New("bad request")
	errSuperseded = errors.New("request superseded by a newer one")
)

// ReportService is the part of report.Service the UI uses.
type ReportService interface {
	ActivityLog(ctx context.Context, q report.Query) (*report.Result, error)
	AccessibleOutlets(ctx context.Context) ([]attendance.Outlet, error)
}

type LeaveUpdater interface {
	UpdateLeaveStatus(ctx context.Context, leaveID int64, status attendance.LeaveStatus) error
}

type Server struct {
	reports ReportService
	leaves  LeaveUpdater
	session *session.Session
	tracker *report.Tracker
	logger  *zap.Logger
	now     func() time.Time

	mux *http.ServeMux
}

type leaveDecisionRequest struct {
	Status  string `json:"status"`
	Current string `json:"current"`
}

type leaveDecisionResponse struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

func NewServer(reports ReportService, leaves LeaveUpdater, sess *session.Session, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	server := &Server{
		reports: reports,
		leaves:  leaves,
		session: sess,
		tracker: report.NewTracker(),
		logger:  logger,
		now:     time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", server.handleIndex)
	mux.HandleFunc("GET /report", server.handleReport)
	mux.HandleFunc("GET /api/report", server.handleAPIReport)
	mux.HandleFunc("GET /api/outlets", server.handleAPIOutlets)
	mux.HandleFunc("POST /api/leaves/{id}/status", server.handleAPILeaveStatus)
	server.mux = mux

	return withRequestLogging(logger, server)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/report", http.StatusFound)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	if s.session == nil {
		http.Error(w, session.ErrNoSession.Error(), http.StatusUnauthorized)
		return
	}

	form := formFromValues(r.URL.Query())
	if form.From == "" && form.To == "" {
		defaults := defaultForm(s.now(), s.session.OutletID)
		if form.Employee != "" {
			defaults.Employee = form.Employee
		}
		if form.Outlet != "" {
			defaults.Outlet = form.Outlet
		}
		http.Redirect(w, r, "/report?"+defaults.Encode(), http.StatusFound)
		return
	}

	view := reportPageView{
		Title:     "Activity log",
		Form:      form,
		Role:      s.session.Role,
		User:      s.session.User.Username,
		CanDecide: s.session.RequireRole(session.RoleAdmin, session.RoleManager) == nil,
	}

	outlets, err := s.reports.AccessibleOutlets(r.Context())
	if err != nil {
		s.renderError(w, r, view, err)
		return
	}
	view.Outlets = outlets

	result, err := s.runReport(r.Context(), form)
	if err != nil {
		s.renderError(w, r, view, err)
		return
	}
	view.apply(result)

	if err := renderTemplate(w, "report.html", view); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleAPIReport(w http.ResponseWriter, r *http.Request) {
	if s.session == nil {
		writeError(w, session.ErrNoSession)
		return
	}

	form := formFromValues(r.URL.Query())
	if form.ViewID == "" {
		form.ViewID = strings.TrimSpace(r.Header.Get("X-View-ID"))
	}

	result, err := s.runReport(r.Context(), form)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newReportResponse(result))
}

// runReport executes the query. Requests carrying a view ID are tracked so
// that a newer request for the same view cancels and replaces this one.
func (s *Server) runReport(ctx context.Context, form ReportForm) (*report.Result, error) {
	q, err := form.Query(s.session.OutletID)
	if err != nil {
		return nil, err
	}

	if form.ViewID == "" {
		return s.reports.ActivityLog(ctx, q)
	}

	reqCtx, ticket := s.tracker.Begin(ctx, form.ViewID)
	result, err := s.reports.ActivityLog(reqCtx, q)
	if !s.tracker.Finish(ticket) {
		s.logger.Debug("discarding superseded report", zap.String("view", form.ViewID))
		return nil, errSuperseded
	}
	return result, err
}

func (s *Server) handleAPIOutlets(w http.ResponseWriter, r *http.Request) {
	if s.session == nil {
		writeError(w, session.ErrNoSession)
		return
	}
	outlets, err := s.reports.AccessibleOutlets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	type outletView struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Status int    `json:"status"`
	}
	out := make([]outletView, 0, len(outlets))
	for _, outlet := range outlets {
		out = append(out, outletView{ID: outlet.ID, Name: outlet.Name, Status: outlet.Status})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAPILeaveStatus(w http.ResponseWriter, r *http.Request) {
	if err := s.session.RequireRole(session.RoleAdmin, session.RoleManager); err != nil {
		writeError(w, err)
		return
	}

	leaveID, err := parsePositiveInt64(r.PathValue("id"))
	if err != nil {
		writeError(w, fmt.Errorf("%w: invalid leave id", errBadRequest))
		return
	}

	var body leaveDecisionRequest
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}

	next, err := attendance.ParseLeaveStatus(body.Status)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if strings.TrimSpace(body.Current) == "" {
		writeError(w, fmt.Errorf("%w: current leave status is required", errBadRequest))
		return
	}
	current, err := attendance.ParseLeaveStatus(body.Current)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	if err := current.TransitionTo(next); err != nil {
		writeError(w, err)
		return
	}

	if err := s.leaves.UpdateLeaveStatus(r.Context(), leaveID, next); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Info("leave decided", zap.Int64("leave_id", leaveID), zap.String("status", string(next)))
	writeJSON(w, http.StatusOK, leaveDecisionResponse{ID: leaveID, Status: string(next)})
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, view reportPageView, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Warn("report page failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	view.Error = err.Error()
	w.WriteHeader(status)
	if renderErr := renderTemplate(w, "report.html", view); renderErr != nil {
		s.logger.Error("render error page", zap.Error(renderErr))
	}
}

func renderTemplate(w http.ResponseWriter, pageTemplate string, data any) error {
	tmpl, err := template.New("base.html").Funcs(template.FuncMap{
		"isLeave": func(row report.Row) bool {
			return row.Class == report.ClassLeave
		},
		"pending": func(row report.Row) bool {
			return row.Class == report.ClassLeave && strings.EqualFold(row.Status, string(attendance.LeavePending))
		},
	}).ParseFS(templateFS, "templates/base.html", "templates/"+pageTemplate)
	if err != nil {
		return fmt.Errorf("parse template %s: %w", pageTemplate, err)
	}
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		return fmt.Errorf("render template %s: %w", pageTemplate, err)
	}
	return nil
}

func statusForError(err error) int {
	var statusErr *api.StatusError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, report.ErrRangeRequired),
		errors.Is(err, report.ErrRangeInverted),
		errors.Is(err, report.ErrInvalidQuery),
		errors.Is(err, api.ErrInvalidInput),
		errors.Is(err, attendance.ErrUnknownLeaveStatus):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrNoSession), errors.Is(err, api.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, session.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, attendance.ErrInvalidLeaveTransition), errors.Is(err, errSuperseded):
		return http.StatusConflict
	case errors.As(err, &statusErr):
		if statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden {
			return statusErr.StatusCode
		}
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, out any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("request body must contain a single JSON object")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
