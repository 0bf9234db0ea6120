package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckActions(t *testing.T) {
	tests := []struct {
		name      string
		actions   []string
		wantServe bool
		wantErr   bool
	}{
		{"none", nil, false, true},
		{"single", []string{"export-origin"}, false, false},
		{"several in order", []string{"clean", "import"}, false, false},
		{"unknown", []string{"import", "migrate"}, false, true},
		{"serve alone", []string{"serve"}, true, false},
		{"serve combined", []string{"import", "serve"}, false, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			serve, err := checkActions(tc.actions)
			assert.Equal(t, tc.wantServe, serve)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRun_ExitCodes(t *testing.T) {
	assert.Equal(t, 0, run([]string{"-version"}))
	assert.Equal(t, 1, run(nil), "no action")
	assert.Equal(t, 1, run([]string{"bogus"}), "unknown action")
	assert.Equal(t, 1, run([]string{"--no-such-flag"}))
	assert.Equal(t, 1, run([]string{"-c", t.TempDir() + "/missing.yml", "clean-all"}), "missing config file")
}
