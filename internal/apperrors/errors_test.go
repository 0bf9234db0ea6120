package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPError_IsNetwork(t *testing.T) {
	err := fmt.Errorf("tags: %w", &HTTPError{Method: "GET", Path: "/hub/tags", Status: 503, Body: "down"})
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, 503, StatusCode(err))
	assert.Contains(t, err.Error(), "GET /hub/tags: HTTP 503")
}

func TestConflictError(t *testing.T) {
	err := &ConflictError{Type: "applications", ID: 7, Snapshot: "billing", Existing: "payroll"}
	assert.True(t, errors.Is(err, ErrConflict))
	assert.Contains(t, err.Error(), `"billing"`)
	assert.Contains(t, err.Error(), `"payroll"`)
	assert.Contains(t, err.Error(), "run clean first")
}

func TestStatusCode_NonHTTP(t *testing.T) {
	assert.Equal(t, 0, StatusCode(errors.New("boom")))
	assert.Equal(t, 0, StatusCode(nil))
}
