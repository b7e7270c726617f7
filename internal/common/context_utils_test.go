package common

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUUID(t *testing.T) {
	valid := uuid.New()

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "valid", input: valid.String()},
		{name: "padded", input: "  " + valid.String() + " "},
		{name: "empty", input: " ", wantErr: "tenant_id is required"},
		{name: "short", input: "1234", wantErr: "exactly 36 characters"},
		{name: "bad characters", input: "zzzzzzzz-zzzz-zzzz-zzzz-zzzzzzzzzzzz", wantErr: "invalid characters"},
		{name: "nil uuid", input: uuid.Nil.String(), wantErr: "nil UUID"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := ValidateUUID(tt.input, "tenant_id")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, uuid.Nil, id)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, valid, id)
		})
	}
}

func TestSendValidationDetails(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	require.NoError(t, SendValidationDetails(c, map[string]string{"index": "2", "id": "apple"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "apple", resp.Error.Details["id"])
}

func TestTenantID(t *testing.T) {
	e := echo.New()
	tenantID := uuid.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, ok := TenantID(c)
	assert.False(t, ok)

	c.Set(string(TenantIDKey), tenantID)
	got, ok := TenantID(c)
	assert.True(t, ok)
	assert.Equal(t, tenantID, got)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), TenantIDKey, tenantID))
	c = e.NewContext(req, httptest.NewRecorder())
	got, ok = TenantID(c)
	assert.True(t, ok)
	assert.Equal(t, tenantID, got)
}
