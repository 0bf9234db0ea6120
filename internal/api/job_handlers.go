package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/tackle-migrator/internal/migration"
	"github.com/rflorenc/tackle-migrator/internal/models"
)

// CreateJob queues a run of migration actions. Jobs run one at a time.
func (s *Server) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Actions []string `json:"actions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(req.Actions) == 0 {
		writeError(w, http.StatusBadRequest, "at least one action is required")
		return
	}
	for _, a := range req.Actions {
		if !migration.IsAction(a) {
			writeError(w, http.StatusBadRequest, "unknown action: "+a)
			return
		}
	}

	job := s.Jobs.Create(req.Actions)
	s.Runner.Submit(job)
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": job.ID})
}

func (s *Server) ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.Jobs.List()
	out := make([]models.JobInfo, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Info())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job := s.Jobs.Get(id)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job.Info())
}
