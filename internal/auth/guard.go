package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/boutique-shop/boutique-shop/internal/platform/httpx"
	"github.com/boutique-shop/boutique-shop/internal/shared"
)

// APIKeyHeader carries a long-lived API key credential. It takes precedence
// over the Authorization header when both are present.
const APIKeyHeader = "x-api-key"

// maxLoginBodyBytes bounds the body read performed by the login fallback.
const maxLoginBodyBytes = 1 << 20

// KeyResolver resolves a presented API key secret to its owning user.
// Implemented by the apikeys service.
type KeyResolver interface {
	Resolve(ctx context.Context, secret string) (*User, error)
}

// DenialCounter records rejected authentications for observability.
type DenialCounter interface {
	CountAuthDenial(reason string)
}

// Guard is the request-time authorization decision engine. Routes declare
// the permissions they require; the guard resolves the caller from an API
// key or a bearer token, re-fetches the role fresh from the store, checks
// token freshness against the last password change and enforces the declared
// permissions before the handler runs.
type Guard struct {
	logger  *slog.Logger
	repo    Repository
	tokens  *TokenIssuer
	keys    KeyResolver
	denials DenialCounter
}

// NewGuard constructs a Guard.
func NewGuard(logger *slog.Logger, repo Repository, tokens *TokenIssuer, keys KeyResolver) *Guard {
	return &Guard{logger: logger, repo: repo, tokens: tokens, keys: keys}
}

// SetDenialCounter attaches an optional metrics sink for denied requests.
func (g *Guard) SetDenialCounter(denials DenialCounter) {
	g.denials = denials
}

// Require returns middleware enforcing that the caller is authenticated and,
// on the token path, holds every named permission. API-key callers skip the
// token-specific freshness and permission-declaration checks.
func (g *Guard) Require(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := g.resolve(r, perms, false)
			if err != nil {
				g.deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// RequireLogin is the guard variant mounted only on the login operation.
// When no credential header is present it falls back to checking the raw
// email/password carried in the body, including the can_post_login flag.
// No other route accepts credentials in the body.
func (g *Guard) RequireLogin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := g.resolve(r, []string{PermPostLogin}, true)
			if err != nil {
				g.deny(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

func (g *Guard) resolve(r *http.Request, perms []string, allowBodyCredentials bool) (*Identity, error) {
	ctx := r.Context()

	if apiKey := r.Header.Get(APIKeyHeader); apiKey != "" {
		return g.resolveAPIKey(ctx, apiKey)
	}

	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if allowBodyCredentials {
			return g.resolveBodyCredentials(r)
		}
		return nil, shared.ErrMissingCredentials
	}

	token := ExtractBearerToken(authHeader)
	if token == "" {
		return nil, shared.ErrMissingCredentials
	}
	return g.resolveToken(ctx, token, perms)
}

// resolveAPIKey handles the API-key path. Keys are not subject to
// password-change invalidation and bypass the declared permission set.
func (g *Guard) resolveAPIKey(ctx context.Context, apiKey string) (*Identity, error) {
	user, err := g.keys.Resolve(ctx, apiKey)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) && !errors.Is(err, shared.ErrNotFound) {
			g.logger.Error("guard: api key store lookup", slog.Any("error", err))
		}
		return nil, shared.ErrInvalidCredentials
	}

	role, err := g.loadRole(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	return &Identity{User: *user, Role: role}, nil
}

// resolveToken handles the bearer-token path: verify, re-fetch the user and
// role by the token's email claim, check freshness, enforce permissions.
func (g *Guard) resolveToken(ctx context.Context, token string, perms []string) (*Identity, error) {
	claims, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := g.repo.FindUserByEmail(ctx, claims.Email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			g.logger.Error("guard: user lookup", slog.Any("error", err))
		}
		return nil, shared.ErrInvalidCredentials
	}

	role, err := g.loadRole(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}

	// A password change strictly after issuance invalidates the token even
	// though its signature is valid and it has not expired.
	if user.PasswordUpdatedAt.After(claims.IssuedAt.Time) {
		return nil, shared.ErrTokenSuperseded
	}

	for _, perm := range perms {
		if !role.Allows(perm) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPermissionDenied, perm)
		}
	}
	return &Identity{User: *user, Role: role}, nil
}

// resolveBodyCredentials performs the login-only direct credential check.
// The body is restored afterwards so the login handler can read it again.
func (g *Guard) resolveBodyCredentials(r *http.Request) (*Identity, error) {
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxLoginBodyBytes))
	if err != nil {
		return nil, shared.ErrMissingCredentials
	}
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.Unmarshal(body, &creds); err != nil || creds.Email == "" || creds.Password == "" {
		return nil, shared.ErrMissingCredentials
	}

	user, err := g.repo.FindUserByEmail(ctx, creds.Email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			g.logger.Error("guard: user lookup", slog.Any("error", err))
		}
		return nil, shared.ErrInvalidCredentials
	}
	if !VerifyPassword(creds.Password, user.PasswordHash) {
		return nil, shared.ErrInvalidCredentials
	}

	role, err := g.loadRole(ctx, user.RoleID)
	if err != nil {
		return nil, err
	}
	if !role.Allows(PermPostLogin) {
		return nil, fmt.Errorf("%w: %s", shared.ErrPermissionDenied, PermPostLogin)
	}
	return &Identity{User: *user, Role: role}, nil
}

// loadRole fetches the role fresh from the store. A missing role resolves to
// nil so every permission check fails closed; infrastructure failures deny
// the request but are logged distinctly for operators.
func (g *Guard) loadRole(ctx context.Context, roleID int64) (*Role, error) {
	role, err := g.repo.FindRoleByID(ctx, roleID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		g.logger.Error("guard: role lookup", slog.Any("error", err))
		return nil, shared.ErrInvalidCredentials
	}
	return role, nil
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, err error) {
	g.logger.Warn("request denied",
		slog.String("path", r.URL.Path),
		slog.String("reason", err.Error()),
	)
	if g.denials != nil {
		g.denials.CountAuthDenial(denialReason(err))
	}
	httpx.RespondError(w, err)
}

func denialReason(err error) string {
	switch {
	case errors.Is(err, shared.ErrMissingCredentials):
		return "missing_credentials"
	case errors.Is(err, shared.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, shared.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, shared.ErrTokenSuperseded):
		return "token_superseded"
	case errors.Is(err, shared.ErrPermissionDenied):
		return "permission_denied"
	default:
		return "other"
	}
}
