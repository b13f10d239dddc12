package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/domain/member"
	"github.com/setlistr/setlistr/internal/pkg/errors"
	"github.com/setlistr/setlistr/internal/pkg/utils"
)

// ContextKey is a custom type for context keys
type ContextKey string

const (
	// ActorKey is the context key for the resolved auth.Actor
	ActorKey ContextKey = "actor"
	// UserEmailKey is the context key for an owner's email
	UserEmailKey ContextKey = "email"
)

// Cookie and header names
const (
	AccessTokenCookie   = "accessToken"
	RefreshTokenCookie  = "refreshToken"
	MemberTokenCookie   = "member_token"
	MemberSessionCookie = "member_session"
	MemberTokenHeader   = "X-Member-Token"
)

// SessionResolver looks up the member holding a token.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*member.Session, error)
}

// Authenticate resolves the request's actor. A valid access token (Bearer
// header or cookie) yields an auth.Owner; otherwise a member token (header or
// cookie) that resolves yields an auth.Member. Requests without credentials
// pass through anonymously and the services decide what they may see.
func Authenticate(jwtSecret string, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr := accessToken(r); tokenStr != "" {
				claims, err := auth.ParseAccess(tokenStr, jwtSecret)
				if err == nil {
					ctx := context.WithValue(r.Context(), ActorKey, auth.Actor(auth.Owner{UserID: claims.UserID}))
					ctx = context.WithValue(ctx, UserEmailKey, claims.Email)

					AddLogField(w, "user_id", claims.UserID)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			if token := MemberToken(r); token != "" && sessions != nil {
				session, err := sessions.ResolveSession(r.Context(), token)
				if err != nil {
					utils.WriteErr(w, err, "Failed to resolve member session")
					return
				}
				if session != nil {
					actor := auth.Member{MemberID: session.Member.ID, BandID: session.Band.ID}
					ctx := context.WithValue(r.Context(), ActorKey, auth.Actor(actor))

					AddLogField(w, "member_id", actor.MemberID)
					AddLogField(w, "band_id", actor.BandID)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwner rejects requests that are not made by a signed-in user
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch ActorFrom(r).(type) {
		case auth.Owner:
			next.ServeHTTP(w, r)
		case nil:
			utils.WriteError(w, errors.Unauthorized("Missing authentication token"))
		default:
			utils.WriteError(w, errors.Forbidden("Not authorized"))
		}
	})
}

// ActorFrom returns the request's actor, or nil when anonymous
func ActorFrom(r *http.Request) auth.Actor {
	actor, _ := r.Context().Value(ActorKey).(auth.Actor)
	return actor
}

// GetUserID returns the owner's user id
func GetUserID(r *http.Request) (int64, bool) {
	return auth.OwnerID(ActorFrom(r))
}

// GetUserEmail extracts the owner's email from the request context
func GetUserEmail(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(UserEmailKey).(string)
	return email, ok
}

// MemberToken returns the member token from the header or cookie
func MemberToken(r *http.Request) string {
	if token := r.Header.Get(MemberTokenHeader); token != "" {
		return token
	}
	if cookie, err := r.Cookie(MemberTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func accessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
