package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestClockConversions(t *testing.T) {
	minutes, err := ClockToMinutes("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, minutes)
	assert.Equal(t, "09:30", MinutesToClock(570))
	assert.Equal(t, "00:00", MinutesToClock(0))

	for _, bad := range []string{"9:30", "24:00", "12:60", "noon"} {
		_, err := ClockToMinutes(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateHelpers(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*60*60)

	assert.True(t, IsValidDate("2030-02-28"))
	assert.False(t, IsValidDate("2030-02-30"))
	assert.False(t, IsValidDate("30-02-2030"))

	day, err := ParseDateInLocation("2030-01-07", jakarta)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 1, 7, 0, 0, 0, 0, jakarta), day)

	// 20:00 UTC on the 6th is already the 7th in WIB
	instant := time.Date(2030, 1, 6, 20, 0, 0, 0, time.UTC)
	start, end := DayBounds(instant, jakarta)
	assert.Equal(t, day, start)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
	assert.Equal(t, "2030-01-07", FormatDate(instant, jakarta))
	assert.Equal(t, "03:00", FormatClock(instant, jakarta))
}

func TestBuildPaginationRequest(t *testing.T) {
	tests := []struct {
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"", 1, constvars.DefaultPageSize},
		{"page=3&page_size=10", 3, 10},
		{"page=-1&page_size=abc", 1, constvars.DefaultPageSize},
		{"page_size=1000", 1, constvars.MaxPageSize},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/payments/history?"+tt.query, nil)
		pagination := BuildPaginationRequest(req)
		assert.Equal(t, tt.wantPage, pagination.Page, tt.query)
		assert.Equal(t, tt.wantPageSize, pagination.PageSize, tt.query)
	}
}

func TestBuildPaginationResponse(t *testing.T) {
	pagination := BuildPaginationResponse(45, 2, 20, "/api/v1/payments/history")
	assert.Equal(t, "/api/v1/payments/history?page=3&page_size=20", pagination.NextURL)
	assert.Equal(t, "/api/v1/payments/history?page=1&page_size=20", pagination.PrevURL)

	last := BuildPaginationResponse(45, 3, 20, "/x")
	assert.Empty(t, last.NextURL)
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:5555"
	assert.Equal(t, "192.0.2.1", ClientIP(req))

	req.Header.Set(constvars.HeaderXRealIP, "198.51.100.7")
	assert.Equal(t, "198.51.100.7", ClientIP(req))

	req.Header.Set(constvars.HeaderXForwardedFor, "203.0.113.9, 10.0.0.1")
	assert.Equal(t, "203.0.113.9", ClientIP(req))
}

func TestGenerateRequestID(t *testing.T) {
	first, second := GenerateRequestID(), GenerateRequestID()
	assert.True(t, strings.HasPrefix(first, constvars.REQUEST_ID_PREFIX))
	assert.NotContains(t, first, "-")
	assert.NotEqual(t, first, second)
}

func TestValidateStructCustomTags(t *testing.T) {
	type window struct {
		Date  string `validate:"required,yyyymmdd"`
		Start string `validate:"required,hhmm"`
		Day   int    `validate:"weekday"`
	}
	assert.NoError(t, ValidateStruct(window{Date: "2030-01-07", Start: "08:00", Day: 1}))
	assert.Error(t, ValidateStruct(window{Date: "2030-13-07", Start: "08:00", Day: 1}))
	assert.Error(t, ValidateStruct(window{Date: "2030-01-07", Start: "8am", Day: 1}))
	assert.Error(t, ValidateStruct(window{Date: "2030-01-07", Start: "08:00", Day: 7}))
}

func TestBuildErrorResponse(t *testing.T) {
	decode := func(rec *httptest.ResponseRecorder) map[string]any {
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	rec := httptest.NewRecorder()
	BuildErrorResponse(zap.NewNop(), rec, fmt.Errorf("wrapped: %w", exceptions.ErrAppointmentNotFound(nil, "appt-1")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(rec)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["message"])

	rec = httptest.NewRecorder()
	BuildErrorResponse(zap.NewNop(), rec, errors.New("plain failure"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, constvars.ErrClientSomethingWrongWithApplication, decode(rec)["message"])
}

func TestBuildSuccessResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	BuildSuccessResponse(rec, http.StatusCreated, "created", map[string]string{"id": "x"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Header().Get(constvars.HeaderContentType), constvars.MIMEApplicationJSON)

	var body struct {
		Success bool              `json:"success"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "x", body.Data["id"])
}
