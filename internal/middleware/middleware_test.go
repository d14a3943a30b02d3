package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/token"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID_GeneratesNew(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	headerID := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, headerID)
	assert.Equal(t, headerID, w.Body.String())
}

func TestRequestID_UsesExisting(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "existing-request-id-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "existing-request-id-123", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "existing-request-id-123", w.Body.String())
}

func TestLogger_PassesThrough(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Logger(logger.Nop()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS_AllowsConfiguredOriginWithCredentials(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:4200"}))
	r.GET("/api/auth/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/ping", nil)
	req.Header.Set("Origin", "http://localhost:4200")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:4200", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/api/auth/ping", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// --- authentication gate ---

type stubUsers map[string]*domain.User

func (s stubUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if email == "broken@tvm.io" {
		return nil, errors.New("connection refused")
	}
	return s[email], nil
}

func newTestCodec(t *testing.T) *token.Codec {
	t.Helper()
	codec, err := token.NewCodec(token.Config{
		Access:  token.KeyConfig{Secret: "gate-access"},
		Refresh: token.KeyConfig{Secret: "gate-refresh"},
	})
	require.NoError(t, err)
	return codec
}

func issue(t *testing.T, codec *token.Codec, email string, role domain.Role, class token.Class) string {
	t.Helper()
	raw, _, err := codec.Issue(token.Subject{Email: email, FullName: "Test User", Authorities: []string{role.Authority()}}, class)
	require.NoError(t, err)
	return raw
}

// statusTranslator stands in for the handler package's translator
func statusTranslator(c *gin.Context, err error) {
	switch {
	case domain.IsAuthenticationError(err):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case domain.IsAuthorizationError(err):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func newGatedEngine(codec *token.Codec, users UserLookup) *gin.Engine {
	policy := DefaultRoutePolicy()
	r := gin.New()
	r.Use(ErrorHandler(statusTranslator), Authenticate(codec, users, PublicPrefixes(policy)...), Authorize(policy))

	echo := func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, p.Email)
	}
	r.POST("/api/auth/login", echo)
	r.GET("/health", echo)
	r.GET("/api/admin/users", echo)
	r.GET("/api/teacher/progress", echo)
	r.GET("/api/student/progress", echo)
	r.GET("/api/me", echo)
	return r
}

func get(r http.Handler, method, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_PopulatesPrincipal(t *testing.T) {
	codec := newTestCodec(t)
	users := stubUsers{"kid@tvm.io": {ID: 42, Email: "kid@tvm.io", Role: domain.RoleStudent, Status: domain.UserStatusActive}}

	var got *domain.Principal
	r := gin.New()
	r.Use(Authenticate(codec, users))
	r.GET("/api/student/x", func(c *gin.Context) {
		got, _ = GetPrincipal(c)
		c.Status(http.StatusOK)
	})

	w := get(r, http.MethodGet, "/api/student/x", issue(t, codec, "kid@tvm.io", domain.RoleStudent, token.Access))
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "kid@tvm.io", got.Email)
	assert.Equal(t, "Test User", got.FullName)
	assert.Equal(t, []string{"ROLE_STUDENT"}, got.Authorities)
}

func TestAuthenticate_ContinuesWithoutIdentity(t *testing.T) {
	codec := newTestCodec(t)
	users := stubUsers{
		"kid@tvm.io":    {ID: 1, Email: "kid@tvm.io", Role: domain.RoleStudent},
		"banned@tvm.io": {ID: 2, Email: "banned@tvm.io", Role: domain.RoleStudent, Status: domain.UserStatusSuspended},
	}

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{"no header", "", nil},
		{"not bearer", "Basic abc", nil},
		{"garbage", "Bearer not-a-jwt", domain.ErrInvalidOrExpiredToken},
		{"refresh key", "Bearer " + issue(t, codec, "kid@tvm.io", domain.RoleStudent, token.Refresh), domain.ErrInvalidOrExpiredToken},
		{"unknown subject", "Bearer " + issue(t, codec, "ghost@tvm.io", domain.RoleStudent, token.Access), domain.ErrUserNotFound},
		{"suspended", "Bearer " + issue(t, codec, "banned@tvm.io", domain.RoleStudent, token.Access), domain.ErrUserSuspended},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errs []*gin.Error
			var authenticated bool
			r := gin.New()
			r.Use(Authenticate(codec, users))
			r.GET("/x", func(c *gin.Context) {
				_, authenticated = GetPrincipal(c)
				errs = c.Errors
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.False(t, authenticated)
			if tt.wantErr == nil {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.ErrorIs(t, errs[0].Err, tt.wantErr)
		})
	}
}

func TestAuthenticate_SkipsPublicPrefixes(t *testing.T) {
	codec := newTestCodec(t)
	r := gin.New()
	r.Use(Authenticate(codec, stubUsers{}, "/api/auth/"))
	var errs int
	r.POST("/api/auth/login", func(c *gin.Context) {
		errs = len(c.Errors)
		c.Status(http.StatusOK)
	})

	w := get(r, http.MethodPost, "/api/auth/login", "expired-or-garbage")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, errs)
}

func TestAuthorize_RouteTable(t *testing.T) {
	codec := newTestCodec(t)
	users := stubUsers{
		"admin@tvm.io":   {ID: 1, Email: "admin@tvm.io", Role: domain.RoleAdmin},
		"teacher@tvm.io": {ID: 2, Email: "teacher@tvm.io", Role: domain.RoleTeacher},
		"kid@tvm.io":     {ID: 3, Email: "kid@tvm.io", Role: domain.RoleStudent},
	}
	r := newGatedEngine(codec, users)

	admin := issue(t, codec, "admin@tvm.io", domain.RoleAdmin, token.Access)
	teacher := issue(t, codec, "teacher@tvm.io", domain.RoleTeacher, token.Access)
	student := issue(t, codec, "kid@tvm.io", domain.RoleStudent, token.Access)

	tests := []struct {
		path   string
		bearer string
		want   int
	}{
		{"/api/auth/login", "", http.StatusOK},
		{"/health", "", http.StatusOK},
		{"/api/admin/users", admin, http.StatusOK},
		{"/api/admin/users", teacher, http.StatusForbidden},
		{"/api/admin/users", student, http.StatusForbidden},
		{"/api/teacher/progress", admin, http.StatusOK},
		{"/api/teacher/progress", teacher, http.StatusOK},
		{"/api/teacher/progress", student, http.StatusForbidden},
		{"/api/student/progress", admin, http.StatusOK},
		{"/api/student/progress", teacher, http.StatusForbidden},
		{"/api/student/progress", student, http.StatusOK},
		{"/api/me", teacher, http.StatusOK},
		{"/api/me", "", http.StatusUnauthorized},
		{"/api/student/progress", "", http.StatusUnauthorized},
		{"/api/student/progress", "tampered", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		method := http.MethodGet
		if tt.path == "/api/auth/login" {
			method = http.MethodPost
		}
		w := get(r, method, tt.path, tt.bearer)
		assert.Equal(t, tt.want, w.Code, "%s %s", tt.path, tt.bearer)
	}
}

func TestAuthorize_LookupFailureIsServerError(t *testing.T) {
	codec := newTestCodec(t)
	r := newGatedEngine(codec, stubUsers{})

	w := get(r, http.MethodGet, "/api/me", issue(t, codec, "broken@tvm.io", domain.RoleStudent, token.Access))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRequireRoles(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(statusTranslator))
	r.Use(func(c *gin.Context) {
		c.Set(PrincipalKey, &domain.Principal{UserID: 1, Authorities: []string{"ROLE_TEACHER"}})
	})
	r.GET("/any", RequireRoles(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/teacher", RequireRoles(domain.RoleTeacher), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/admin", RequireRoles(domain.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, http.MethodGet, "/any", "").Code)
	assert.Equal(t, http.StatusOK, get(r, http.MethodGet, "/teacher", "").Code)
	assert.Equal(t, http.StatusForbidden, get(r, http.MethodGet, "/admin", "").Code)
}

func TestErrorHandler_LeavesWrittenResponses(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(statusTranslator))
	r.GET("/x", func(c *gin.Context) {
		_ = c.Error(domain.ErrInvalidOrExpiredToken)
		c.String(http.StatusOK, "fine")
	})

	w := get(r, http.MethodGet, "/x", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fine", w.Body.String())
}

// --- rate limiting ---

type memoryCounter struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (m *memoryCounter) IncrWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	if m.counts == nil {
		m.counts = map[string]int64{}
	}
	m.counts[key]++
	return m.counts[key], nil
}

func TestRateLimit(t *testing.T) {
	counter := &memoryCounter{}
	r := gin.New()
	r.POST("/api/auth/login", RateLimit(RateLimitConfig{Counter: counter, Limit: 2, Name: "login"}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, get(r, http.MethodPost, "/api/auth/login", "").Code)
	}
	w := get(r, http.MethodPost, "/api/auth/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	assert.Len(t, counter.counts, 1)
	for key := range counter.counts {
		assert.Contains(t, key, RateLimitKeyPrefix+"login:")
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	counter := &memoryCounter{err: errors.New("redis down")}
	r := gin.New()
	r.POST("/login", RateLimit(RateLimitConfig{Counter: counter, Limit: 1}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, http.MethodPost, "/login", "").Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(RateLimitConfig{Limit: 1}), func(c *gin.Context) { c.Status(http.StatusOK) })
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, http.MethodPost, "/login", "").Code)
	}
}
