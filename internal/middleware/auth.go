package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/domain"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/internal/token"
	"github.com/KAVYA-KOLLAREDDY/Tiny-Vivid-Minds/pkg/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// PrincipalKey is the gin context key holding the *domain.Principal
	PrincipalKey = "principal"

	bearerPrefix = "Bearer "
)

// TokenVerifier verifies signed tokens of a given class
type TokenVerifier interface {
	Verify(tokenString string, class token.Class) (*token.Claims, error)
}

// UserLookup resolves a token subject to the stored account
type UserLookup interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Authenticate populates the request principal from a bearer access token.
// It never rejects a request itself: a missing header passes through
// anonymous, and a verification failure is recorded with c.Error so the
// route guard and ErrorHandler can answer uniformly.
func Authenticate(verifier TokenVerifier, users UserLookup, publicPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hasAnyPrefix(c.Request.URL.Path, publicPrefixes) {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			c.Next()
			return
		}
		raw := strings.TrimSpace(header[len(bearerPrefix):])

		principal, err := resolve(c.Request.Context(), verifier, users, raw)
		if err != nil {
			_ = c.Error(err)
			c.Next()
			return
		}

		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

func resolve(ctx context.Context, verifier TokenVerifier, users UserLookup, raw string) (*domain.Principal, error) {
	ctx, span := telemetry.StartSpan(ctx, "middleware.authenticate")
	defer span.End()

	claims, err := verifier.Verify(raw, token.Access)
	if err != nil {
		span.SetStatus(codes.Error, "token rejected")
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidOrExpiredToken, err)
	}

	user, err := users.GetByEmail(ctx, claims.Subject)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	if user == nil {
		span.SetStatus(codes.Error, "unknown subject")
		return nil, domain.ErrUserNotFound
	}
	if !user.CanAuthenticate() {
		span.SetStatus(codes.Error, "suspended")
		return nil, domain.ErrUserSuspended
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	return &domain.Principal{
		UserID:      user.ID,
		Email:       claims.Subject,
		FullName:    claims.Username,
		Authorities: claims.AuthorityList(),
	}, nil
}

// GetPrincipal returns the authenticated principal of the request, if any
func GetPrincipal(c *gin.Context) (*domain.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*domain.Principal)
	return p, ok && p != nil
}

// RouteRule grants access to paths under Prefix. Public rules need no
// identity; otherwise an identity is required, holding one of Roles when
// Roles is non-empty.
type RouteRule struct {
	Prefix string
	Public bool
	Roles  []domain.Role
}

// DefaultRoutePolicy is the static access table of the API. Paths that match
// no rule require any authenticated identity.
func DefaultRoutePolicy() []RouteRule {
	return []RouteRule{
		{Prefix: "/api/auth/", Public: true},
		{Prefix: "/api/public/", Public: true},
		{Prefix: "/health", Public: true},
		{Prefix: "/ready", Public: true},
		{Prefix: "/api/admin/", Roles: []domain.Role{domain.RoleAdmin}},
		{Prefix: "/api/teacher/", Roles: []domain.Role{domain.RoleAdmin, domain.RoleTeacher}},
		{Prefix: "/api/student/", Roles: []domain.Role{domain.RoleAdmin, domain.RoleStudent}},
	}
}

// PublicPrefixes lists the prefixes of the public rules in policy
func PublicPrefixes(policy []RouteRule) []string {
	var out []string
	for _, r := range policy {
		if r.Public {
			out = append(out, r.Prefix)
		}
	}
	return out
}

// Authorize enforces policy using the principal set by Authenticate.
// The first matching rule wins.
func Authorize(policy []RouteRule) gin.HandlerFunc {
	return func(c *gin.Context) {
		rule := match(policy, c.Request.URL.Path)
		if rule.Public {
			c.Next()
			return
		}
		guard(c, rule.Roles)
	}
}

// RequireRoles guards a single route group. With no roles any identity passes.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		guard(c, roles)
	}
}

func guard(c *gin.Context, roles []domain.Role) {
	principal, ok := GetPrincipal(c)
	if !ok {
		// the gate already recorded why it could not authenticate
		if len(c.Errors) == 0 {
			_ = c.Error(domain.ErrUnauthenticated)
		}
		c.Abort()
		return
	}
	if len(roles) > 0 && !principal.HasAnyRole(roles...) {
		_ = c.Error(domain.ErrForbidden)
		c.Abort()
		return
	}
	c.Next()
}

func match(policy []RouteRule, path string) RouteRule {
	for _, r := range policy {
		if strings.HasPrefix(path, r.Prefix) {
			return r
		}
	}
	return RouteRule{}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
