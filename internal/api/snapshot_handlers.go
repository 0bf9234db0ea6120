package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/tackle-migrator/internal/apperrors"
	"github.com/rflorenc/tackle-migrator/internal/migration"
	"github.com/rflorenc/tackle-migrator/internal/models"
)

type typeInfo struct {
	Type     models.EntityType `json:"type"`
	File     string            `json:"file"`
	Uploaded bool              `json:"uploaded"`
}

// ListTypes returns the entity types in upload order.
func (s *Server) ListTypes(w http.ResponseWriter, r *http.Request) {
	types := models.Types()
	out := make([]typeInfo, 0, len(types))
	for _, t := range types {
		out = append(out, typeInfo{
			Type:     t,
			File:     t.FileName(),
			Uploaded: t.HasIdentity(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetSnapshot returns the per-type record counts of the snapshot on disk,
// plus its manifest when one was written.
func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := migration.ReadSnapshot(s.DataDir)
	if err != nil {
		writeSnapshotError(w, err)
		return
	}
	resp := map[string]interface{}{
		"data_dir": s.DataDir,
		"counts":   snap.Counts(),
	}
	if m, err := migration.ReadManifest(s.DataDir); err == nil {
		resp["manifest"] = m
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSnapshotType returns the raw records of one type, in file order.
func (s *Server) GetSnapshotType(w http.ResponseWriter, r *http.Request) {
	t, ok := models.ParseType(chi.URLParam(r, "type"))
	if !ok {
		writeError(w, http.StatusNotFound, "unknown type")
		return
	}
	items, err := migration.ReadType(s.DataDir, t)
	if err != nil {
		writeSnapshotError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func writeSnapshotError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperrors.ErrConfig) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
