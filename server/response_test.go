package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_jsonOK_writesStatusAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	jsonOK(map[string]string{"a": "b"}).writeResponse(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "b", body["a"])
}

func Test_jsonNoContent_writesNoBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/", nil)

	jsonNoContent().writeResponse(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func Test_jsonBadRequest_wrapsUserMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	jsonBadRequest("missing field").writeResponse(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "missing field", body.Error)
	assert.Equal(t, http.StatusBadRequest, body.Status)
}

func Test_jsonUnauthorized_setsWWWAuthenticateHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	jsonUnauthorized("").writeResponse(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "You are not authorized to do that", body.Error)
}

func Test_jsonInternalServerError_neverLeaksInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	jsonInternalServerError("db connection to %s failed", "10.0.0.1:5432").writeResponse(rec, req)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "An internal server error occurred", body.Error)
	assert.NotContains(t, rec.Body.String(), "10.0.0.1")
}

func Test_EndpointResult_withHeader_doesNotMutateOriginal(t *testing.T) {
	base := jsonOK(nil)
	withHdr := base.withHeader("X-Test", "1")

	assert.Empty(t, base.hdrs)
	assert.Len(t, withHdr.hdrs, 1)
}

func Test_EndpointResult_writeResponse_zeroValueIsInternalError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	var zero EndpointResult
	zero.writeResponse(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
