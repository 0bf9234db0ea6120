package api

import (
	"net/http"

	"github.com/rflorenc/tackle-migrator/internal/models"
)

type targetInfo struct {
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	TokenURL string `json:"token_url,omitempty"`
	ClientID string `json:"client_id,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Insecure bool   `json:"insecure"`
	Error    string `json:"error,omitempty"`
}

// ListTargets shows the configured origin and destination with masked
// passwords. A target that fails validation is listed with its error.
func (s *Server) ListTargets(w http.ResponseWriter, r *http.Request) {
	out := []targetInfo{
		describeTarget("origin", s.Targets.Origin),
		describeTarget("destination", s.Targets.Destination),
	}
	writeJSON(w, http.StatusOK, out)
}

func describeTarget(name string, resolve func() (*models.Target, error)) targetInfo {
	t, err := resolve()
	if err != nil {
		return targetInfo{Name: name, Error: err.Error()}
	}
	return targetInfo{
		Name:     t.Name,
		URL:      t.BaseURL(),
		TokenURL: t.TokenURL,
		ClientID: t.ClientID,
		Username: t.Username,
		Password: t.MaskedPassword(),
		Insecure: t.Insecure,
	}
}
