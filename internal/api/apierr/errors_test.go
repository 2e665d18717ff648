package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/gemtofu/internal/model"
)

func TestWriteErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"game not found", fmt.Errorf("load: %w", model.ErrGameNotFound), http.StatusNotFound, CodeGameNotFound},
		{"identity not found", model.ErrIdentityNotFound, http.StatusNotFound, CodeIdentityNotFound},
		{"invalid request", NewInvalidRequestError("bad limit"), http.StatusBadRequest, CodeInvalidRequest},
		{"unavailable", NewUnavailableError("redis down"), http.StatusServiceUnavailable, CodeUnavailable},
		{"method not allowed", NewMethodNotAllowedError(), http.StatusMethodNotAllowed, CodeMethodNotAllowed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteError(rr, tt.err)

			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}
