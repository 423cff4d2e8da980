package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appAuth "github.com/yigit/parishscheduler/internal/app/auth"
	"github.com/yigit/parishscheduler/internal/app/models"
	"github.com/yigit/parishscheduler/internal/app/models/dto"
	"github.com/yigit/parishscheduler/internal/pkg/apperrors"
	"github.com/yigit/parishscheduler/internal/pkg/auth"
	"github.com/yigit/parishscheduler/internal/pkg/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logger.Configure(logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	os.Exit(m.Run())
}

type errorBody struct {
	Success bool             `json:"success"`
	Error   *dto.ErrorDetail `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	return body
}

func jsonBody(s string) io.Reader {
	return strings.NewReader(s)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
}

func protectedRouter(jwtService *auth.JWTService, action appAuth.Action) *gin.Engine {
	m := NewAuthMiddleware(jwtService)
	r := gin.New()
	r.GET("/protected", m.JWTAuth(), m.Require(action), func(c *gin.Context) {
		identity, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, dto.NewAPIResponse(identity.UserID))
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	jwtService := newJWT()
	router := protectedRouter(jwtService, appAuth.ActionMinistryWrite)

	directorToken, _, err := jwtService.GenerateToken(auth.Identity{UserID: "u-director", Role: models.RoleDirector})
	require.NoError(t, err)
	volunteerToken, _, err := jwtService.GenerateToken(auth.Identity{UserID: "u-volunteer", Role: models.RoleVolunteer})
	require.NoError(t, err)
	foreignToken, _, err := auth.NewJWTService(auth.JWTConfig{SecretKey: "other", AccessTokenExp: time.Hour}).
		GenerateToken(auth.Identity{UserID: "u-director", Role: models.RoleDirector})
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"missing header", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Authorization header missing"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Invalid authorization header format"},
		{"bearer without token", "Bearer", http.StatusUnauthorized, dto.ErrorCodeUnauthorized, "Invalid authorization header format"},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid or expired token"},
		{"foreign signature", "Bearer " + foreignToken, http.StatusUnauthorized, dto.ErrorCodeInvalidToken, "Invalid or expired token"},
		{"role not allowed", "Bearer " + volunteerToken, http.StatusForbidden, dto.ErrorCodeForbidden, "Access denied"},
		{"allowed", "Bearer " + directorToken, http.StatusOK, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Contains(t, rec.Body.String(), "u-director")
				return
			}
			body := decodeError(t, rec)
			assert.False(t, body.Success)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
}

func TestRoleRequired_WithoutIdentity(t *testing.T) {
	m := NewAuthMiddleware(newJWT())
	r := gin.New()
	r.GET("/open", m.RoleRequired(models.RoleDirector), func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/open", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleAPIError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"validation", apperrors.NewValidationError("date must be formatted as YYYY-MM-DD"), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "date must be formatted as YYYY-MM-DD"},
		{"bad request", apperrors.NewBadRequestError("one or more volunteers do not exist"), http.StatusBadRequest, dto.ErrorCodeBadRequest, "one or more volunteers do not exist"},
		{"referenced", apperrors.NewReferentialIntegrityError("cannot delete"), http.StatusBadRequest, dto.ErrorCodeResourceReferenced, "cannot delete"},
		{"already confirmed", apperrors.ErrAlreadyConfirmed, http.StatusBadRequest, dto.ErrorCodeInvalidState, "participation already confirmed"},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, "Invalid email or password"},
		{"disabled", apperrors.ErrAccountDisabled, http.StatusForbidden, dto.ErrorCodeAccountDisabled, "Account is disabled"},
		{"forbidden", apperrors.NewForbiddenError("coordinators can only create volunteers"), http.StatusForbidden, dto.ErrorCodeForbidden, "coordinators can only create volunteers"},
		{"wrapped not found", fmt.Errorf("loading: %w", apperrors.ErrResourceNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "Resource not found"},
		{"conflict", apperrors.ErrMinistryNameExists, http.StatusConflict, dto.ErrorCodeConflict, "a ministry with this name already exists"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/fail", func(c *gin.Context) { HandleAPIError(c, tt.err) })

			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))

			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.code, body.Error.Code)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
}

func TestRecoveryAndNotFound(t *testing.T) {
	r := gin.New()
	r.Use(Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.NoRoute(NotFound())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, dto.ErrorCodeInternalServer, decodeError(t, rec).Error.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, decodeError(t, rec).Error.Code)
}

func TestHandleBindingError(t *testing.T) {
	type payload struct {
		Email string `json:"email" binding:"required,email"`
	}
	r := gin.New()
	r.POST("/bind", func(c *gin.Context) {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			HandleBindingError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/bind", jsonBody(`{"email":"nope"}`))
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, dto.ErrorCodeValidationFailed, body.Error.Code)
	assert.Contains(t, rec.Body.String(), "Email must be a valid email address")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/bind", jsonBody(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Malformed request body")
}

func TestIPRateLimiter(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	r := gin.New()
	r.POST("/login", limiter.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestIPRateLimiter_Disabled(t *testing.T) {
	limiter := NewIPRateLimiter(0, 0)
	r := gin.New()
	r.GET("/", limiter.Handler(), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 20; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	r := gin.New()
	r.Use(metrics.Handler())
	r.GET("/api/v1/ministries/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/api/v1/ministries/a", "/api/v1/ministries/b", "/missing"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodGet, "/api/v1/ministries/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues(http.MethodGet, "unmatched", "404")))
}
