package httputil

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]any{"success": true, "uploaded": 5})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"uploaded":5}`, rec.Body.String())
}

func TestErrorHelpers(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequest(rec, "Missing required fields")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing required fields"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	InternalError(rec, "Failed to fetch data from Meta")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch data from Meta"}`, rec.Body.String())
}

func TestRawJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RawJSON(rec, http.StatusOK, []byte(`{"data":[{"campaign_name":"x"}]}`))
	assert.Equal(t, `{"data":[{"campaign_name":"x"}]}`, rec.Body.String())
}

func TestReadBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	body, err := ReadBody(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"a"}`, string(body))
}

func TestReadBodyTooLarge(t *testing.T) {
	big := bytes.Repeat([]byte("a"), MaxBodyBytes+1)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(big))
	_, err := ReadBody(httptest.NewRecorder(), req)
	assert.ErrorIs(t, err, ErrBodyTooLarge)
}
