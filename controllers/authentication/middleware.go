package authentication

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"fintrek-backend/controllers/respond"
	"fintrek-backend/models"
)

type contextKey struct{}

type Identity struct {
	UserID string
	Email  string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok && id.UserID != ""
}

// UserID returns the authenticated user id, or "" for anonymous requests.
func UserID(ctx context.Context) string {
	id, _ := IdentityFrom(ctx)
	return id.UserID
}

// Guard authenticates bearer tokens on protected routes.
type Guard struct {
	Tokens *TokenIssuer
	DB     *gorm.DB
	Now    func() time.Time
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Require rejects requests without a valid access token.
func (g *Guard) Require(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respond.Error(w, http.StatusUnauthorized, "Access token required")
			return
		}
		claims, err := g.Tokens.Parse(token, TokenTypeAccess)
		if err != nil {
			respond.Error(w, http.StatusForbidden, "Invalid or expired token")
			return
		}
		g.touch(claims.Subject)
		next(w, r.WithContext(WithIdentity(r.Context(), Identity{UserID: claims.Subject, Email: claims.Email})))
	}
}

// Optional attaches the identity when a valid token is present and never rejects.
func (g *Guard) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token := bearerToken(r); token != "" {
			if claims, err := g.Tokens.Parse(token, TokenTypeAccess); err == nil {
				g.touch(claims.Subject)
				r = r.WithContext(WithIdentity(r.Context(), Identity{UserID: claims.Subject, Email: claims.Email}))
			}
		}
		next(w, r)
	}
}

// touch records presence for the community "active members" count, at most once a minute.
func (g *Guard) touch(userID string) {
	if g.DB == nil {
		return
	}
	now := time.Now().UTC()
	if g.Now != nil {
		now = g.Now().UTC()
	}
	err := g.DB.Model(&models.User{}).
		Where("id = ? AND (last_seen_at IS NULL OR last_seen_at < ?)", userID, now.Add(-time.Minute)).
		UpdateColumn("last_seen_at", now).Error
	if err != nil {
		log.Printf("auth: update last_seen_at for %s: %v", userID, err)
	}
}
