package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"lessonforge/internal/api"
	"lessonforge/internal/config"
	"lessonforge/internal/pipeline"
	"lessonforge/internal/project"
	"lessonforge/internal/services"
)

// stageActions maps stage endpoint names to the generating status each one
// requests.
var stageActions = map[string]project.Status{
	"generate-content": project.StatusContentGenerating,
	"generate-audio":   project.StatusAudioGenerating,
	"generate-avatar":  project.StatusAvatarGenerating,
	"render":           project.StatusRendering,
}

type apiServer struct {
	bind       string
	logger     *slog.Logger
	daemon     *Daemon
	projectSvc *api.ProjectService

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	srv := &apiServer{
		bind:       bind,
		logger:     logger,
		daemon:     d,
		projectSvc: api.NewProjectService(d.store),
	}

	token := cfg.Paths.APIToken
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", srv.requireToken(token, srv.handleStatus))
	mux.HandleFunc("/api/projects", srv.requireToken(token, srv.handleProjects))
	mux.HandleFunc("/api/projects/", srv.requireToken(token, srv.handleProjectSubtree))

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", slog.String("error", err.Error()))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", slog.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, api.DaemonStatus{
		Running:       status.Running,
		PID:           status.PID,
		ProjectDBPath: status.ProjectDBPath,
		LockFilePath:  status.LockFilePath,
		ProjectStats:  api.MergeProjectStats(status.ProjectStats),
	})
}

func (s *apiServer) handleProjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listProjects(w, r)
	case http.MethodPost:
		s.createProject(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *apiServer) listProjects(w http.ResponseWriter, r *http.Request) {
	var statuses []project.Status
	for _, value := range r.URL.Query()["status"] {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		status, ok := project.ParseStatus(trimmed)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown status %q", trimmed))
			return
		}
		statuses = append(statuses, status)
	}

	projects, err := s.projectSvc.List(r.Context(), statuses...)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.ProjectListResponse{Projects: projects})
}

func (s *apiServer) createProject(w http.ResponseWriter, r *http.Request) {
	var req api.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := api.ToProject(req).Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.projectSvc.Create(r.Context(), req)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusCreated, api.ProjectResponse{Project: *created})
}

func (s *apiServer) handleProjectSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/projects/")
	id, action, _ := strings.Cut(rest, "/")
	if id == "" || strings.Contains(action, "/") {
		s.writeError(w, http.StatusNotFound, "project not found")
		return
	}

	if action == "" {
		switch r.Method {
		case http.MethodGet:
			s.describeProject(w, r, id)
		case http.MethodDelete:
			s.removeProject(w, r, id)
		default:
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.runStageAction(w, r, id, action)
}

func (s *apiServer) describeProject(w http.ResponseWriter, r *http.Request, id string) {
	dto, err := s.projectSvc.Describe(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if dto == nil {
		s.writeError(w, http.StatusNotFound, "project not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.ProjectResponse{Project: *dto})
}

func (s *apiServer) removeProject(w http.ResponseWriter, r *http.Request, id string) {
	removed, err := s.projectSvc.Remove(r.Context(), id)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !removed {
		s.writeError(w, http.StatusNotFound, "project not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *apiServer) runStageAction(w http.ResponseWriter, r *http.Request, id, action string) {
	var target project.Status
	if action == "retry" {
		p, err := s.daemon.store.GetByID(r.Context(), id)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if p == nil {
			s.writeError(w, http.StatusNotFound, "project not found")
			return
		}
		retryTarget, ok := pipeline.RetryTarget(p)
		if !ok {
			s.writeError(w, http.StatusConflict, "project has no failed stage to retry")
			return
		}
		target = retryTarget
	} else {
		mapped, ok := stageActions[action]
		if !ok {
			s.writeError(w, http.StatusNotFound, "unknown action")
			return
		}
		target = mapped
	}

	if err := s.daemon.orch.Dispatch(r.Context(), id, target); err != nil {
		s.writeStageError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.AcceptedResponse{ProjectID: id, Target: string(target)})
}

// writeStageError translates the orchestrator's error taxonomy into distinct
// status codes so the CLI can tell a busy pipeline from a bad request.
func (s *apiServer) writeStageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		s.writeError(w, http.StatusNotFound, "project not found")
	case errors.Is(err, services.ErrBusy):
		s.writeError(w, http.StatusConflict, "another stage is already running")
	case errors.Is(err, services.ErrInvalidTransition):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrMissingPrerequisite):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", slog.String("error", err.Error()))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, api.ErrorResponse{Error: message})
}

func (s *apiServer) log() *slog.Logger {
	if s == nil || s.logger == nil {
		return slog.Default()
	}
	return s.logger
}
