// Package devserver is an in-memory backend speaking the same HTTP API
// the client expects. It accepts dev identity credentials only.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tgienger/tkrm/internal/logger"
	"github.com/tgienger/tkrm/internal/models"
	"go.uber.org/zap"
)

type Server struct {
	store *Store
}

func New(store *Store) *Server {
	return &Server{store: store}
}

// Router mounts the API under /api
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logging)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)
			r.Post("/auth/logout", s.logout)

			r.Get("/tasks", s.listTasks)
			r.With(requireRole(models.RoleAdmin, models.RoleManager)).Post("/tasks", s.createTask)
			r.Put("/tasks/{id}", s.updateTask)
			r.With(requireRole(models.RoleAdmin, models.RoleManager)).Delete("/tasks/{id}", s.deleteTask)
			r.Post("/tasks/{id}/notes", s.appendNote)

			r.With(requireRole(models.RoleAdmin, models.RoleManager)).Get("/users", s.listUsers)
			r.With(requireRole(models.RoleAdmin)).Delete("/users/{id}", s.deleteUser)
		})
	})
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, addr string, store *Store) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           New(store).Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("devserver: listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("devserver: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func responseWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("devserver: encode response", err)
	}
}

func responseWithError(w http.ResponseWriter, code int, message string) {
	responseWithJSON(w, code, map[string]string{"message": message})
}

func handleStoreError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		responseWithError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, ErrNotFound):
		responseWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, ErrForbidden):
		responseWithError(w, http.StatusForbidden, "Not allowed for your role")
	case errors.Is(err, ErrUnknownUser):
		responseWithError(w, http.StatusUnauthorized, "Unknown user")
	default:
		logger.Error("devserver: unexpected error", err)
		responseWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		responseWithError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Token string `json:"token"`
	}
	if !decode(w, r, &in) {
		return
	}
	sess, err := s.store.Login(in.Token)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	responseWithJSON(w, http.StatusOK, sess)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.store.Logout(currentToken(r))
	responseWithJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK, s.store.Tasks(currentUser(r)))
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var fields models.TaskFields
	if !decode(w, r, &fields) {
		return
	}
	t, err := s.store.CreateTask(fields, currentUser(r))
	if err != nil {
		handleStoreError(w, err)
		return
	}
	responseWithJSON(w, http.StatusCreated, map[string]any{"task": t})
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	var patch models.TaskPatch
	if !decode(w, r, &patch) {
		return
	}
	t, err := s.store.UpdateTask(chi.URLParam(r, "id"), patch, currentUser(r))
	if err != nil {
		handleStoreError(w, err)
		return
	}
	responseWithJSON(w, http.StatusOK, t)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTask(chi.URLParam(r, "id")); err != nil {
		handleStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) appendNote(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Message string `json:"message"`
	}
	if !decode(w, r, &in) {
		return
	}
	notes, err := s.store.AppendNote(chi.URLParam(r, "id"), in.Message, currentUser(r))
	if err != nil {
		handleStoreError(w, err)
		return
	}
	responseWithJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	responseWithJSON(w, http.StatusOK, s.store.Users())
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteUser(chi.URLParam(r, "id")); err != nil {
		handleStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
