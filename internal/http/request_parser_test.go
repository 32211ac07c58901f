package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestBodyParser_Form(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("title=+Rent%00+&amount=900.5"))
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	require.NoError(t, p.Parse())

	assert.False(t, p.IsJSON())
	assert.Equal(t, "Rent", p.Get("title"))
	assert.Equal(t, "900.5", p.Get("amount"))
	assert.Empty(t, p.Get("missing"))
}

func TestRequestBodyParser_JSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"source":"Salary","amount":2500}`))
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	require.NoError(t, p.Parse())

	assert.True(t, p.IsJSON())
	assert.Equal(t, "Salary", p.Get("source"))
	assert.Equal(t, "2500", p.Get("amount"))
}

func TestRequestBodyParser_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"source":`))
	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	assert.Error(t, p.Parse())
	assert.Error(t, p.Parse(), "error is sticky")
}

func TestRequestBodyParser_Empty(t *testing.T) {
	p := NewRequestBodyParser(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	require.NoError(t, p.Parse())
	assert.Empty(t, p.Get("title"))
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	body := "title=Rent&amount=1&pad=" + strings.Repeat("x", maxBodyBytes)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	p := NewRequestBodyParser(httptest.NewRecorder(), req)

	var tooLarge *http.MaxBytesError
	require.ErrorAs(t, p.Parse(), &tooLarge)
	assert.Empty(t, p.Get("title"), "partial body must not be decoded")
}

func TestParseFields_TooLargeIs413(t *testing.T) {
	body := "title=Rent&amount=1&pad=" + strings.Repeat("x", maxBodyBytes)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rr := httptest.NewRecorder()

	fields, errResp := parseFields(rr, req, "title", "amount")
	require.NotNil(t, errResp)
	assert.Nil(t, fields)
	errResp.Write(rr)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "a\tb", sanitizeInput("  a\t\x07b \n"))
	assert.Equal(t, "", sanitizeInput("   "))
}
