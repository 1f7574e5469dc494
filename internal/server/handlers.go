package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/repository"
	"github.com/claude/liftlog/internal/storage"
	"github.com/go-chi/chi/v5"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeOpError maps repository errors onto HTTP status codes.
func (s *Server) writeOpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrValidation):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		s.log.Error("operation failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	info, _ := r.Context().Value(userInfoKey).(UserInfo)
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"units": s.units})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.repo.Snapshot(r.Context())
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type createWorkoutRequest struct {
	Name string `json:"name"`
	Date string `json:"date"` // YYYY-MM-DD; empty means today
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date, want YYYY-MM-DD: " + err.Error()})
			return
		}
		date = parsed
	}

	snap, err := s.repo.CreateWorkout(r.Context(), req.Name, date)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	snap, err := s.repo.DeleteWorkout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDuplicateWorkout(w http.ResponseWriter, r *http.Request) {
	snap, err := s.repo.DuplicateWorkout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

type addSetsRequest struct {
	ExerciseID   string   `json:"exerciseId"`
	Count        int      `json:"count"`
	TargetReps   int      `json:"targetReps"`
	TargetWeight *float64 `json:"targetWeight"`
	TargetRPE    *float64 `json:"targetRpe"`
	Type         string   `json:"type"`
}

func (s *Server) handleAddPlannedSets(w http.ResponseWriter, r *http.Request) {
	var req addSetsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	snap, err := s.repo.AddPlannedSets(r.Context(), repository.AddSetsParams{
		WorkoutID:    chi.URLParam(r, "id"),
		ExerciseID:   req.ExerciseID,
		Count:        req.Count,
		TargetReps:   req.TargetReps,
		TargetWeight: req.TargetWeight,
		TargetRPE:    req.TargetRPE,
		Type:         models.SetType(req.Type),
	})
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var patch models.SetPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	snap, err := s.repo.UpdateSetFields(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	snap, err := s.repo.DeleteSet(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleExerciseProgress(w http.ResponseWriter, r *http.Request) {
	points, err := s.repo.ExerciseProgress(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	if points == nil {
		points = []repository.ProgressPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	rows, err := s.repo.ExportRows(r.Context())
	if err != nil {
		s.writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := s.repo.ExportRows(r.Context())
	if err != nil {
		s.writeOpError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="liftlog-sets.csv"`)

	if err := storage.WriteCSV(w, rows); err != nil {
		s.log.Error("csv export failed", "error", err)
	}
}
