package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		detail string
	}{
		{"not found", fmt.Errorf("pos: venta 1: %w", ErrNotFound), http.StatusNotFound, "pos: venta 1: resource not found"},
		{"validation", fmt.Errorf("%w: mes inválido", ErrValidation), http.StatusBadRequest, "validation failed: mes inválido"},
		{"pending", ErrNotReady, http.StatusAccepted, "resource not ready"},
		{"internal", errors.New("dial tcp 10.0.0.1:5432: refused"), http.StatusInternalServerError, "No se pudo completar la solicitud"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)

			require.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
			var body ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.status, body.Status)
			assert.Equal(t, tc.detail, body.Detail)
		})
	}
}

func TestAttachmentHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, Attachment(rec, "application/pdf", "factura-001.pdf", []byte("%PDF-1.3")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="factura-001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "8", rec.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var target struct {
		Kind string `json:"kind"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"daily","extra":1}`))
	err := DecodeJSON(req, &target)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"kind":"daily"}`))
	require.NoError(t, DecodeJSON(req, &target))
	assert.Equal(t, "daily", target.Kind)
}
