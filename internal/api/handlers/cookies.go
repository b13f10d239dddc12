package handlers

import (
	"net/http"
	"time"

	"github.com/setlistr/setlistr/internal/api/middleware"
	"github.com/setlistr/setlistr/internal/auth"
	"github.com/setlistr/setlistr/internal/config"
)

// memberCookieAge keeps member cookies for a season of shows. Tokens never
// expire on their own.
const memberCookieAge = 180 * 24 * time.Hour

func setAuthCookies(w http.ResponseWriter, cfg config.AuthConfig, tokens auth.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(cfg.AccessTokenExpiry.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.RefreshTokenCookie,
		Value:    tokens.RefreshToken,
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/api/v1/auth",
		MaxAge:   int(cfg.RefreshTokenExpiry.Seconds()),
	})
}

func clearAuthCookies(w http.ResponseWriter, cfg config.AuthConfig) {
	clearCookie(w, middleware.AccessTokenCookie, "/", true, cfg.CookieSecure)
	clearCookie(w, middleware.RefreshTokenCookie, "/api/v1/auth", true, cfg.CookieSecure)
}

// setMemberCookies stores the session marker (httpOnly) and the token itself,
// which the frontend reads to build share links.
func setMemberCookies(w http.ResponseWriter, secure bool, token string) {
	age := int(memberCookieAge.Seconds())
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.MemberSessionCookie,
		Value:    "1",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   age,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.MemberTokenCookie,
		Value:    token,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   age,
	})
}

func clearMemberCookies(w http.ResponseWriter, secure bool) {
	clearCookie(w, middleware.MemberSessionCookie, "/", true, secure)
	clearCookie(w, middleware.MemberTokenCookie, "/", false, secure)
}

func clearCookie(w http.ResponseWriter, name, path string, httpOnly, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		HttpOnly: httpOnly,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     path,
		MaxAge:   -1,
	})
}
