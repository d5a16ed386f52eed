package api

import (
	"net/http"
	"time"

	"droneworks/opsdesk/internal/auth"
	"droneworks/opsdesk/internal/config"
	"droneworks/opsdesk/internal/middleware"
	"droneworks/opsdesk/internal/models/dtos"
	"droneworks/opsdesk/internal/services"
)

const refreshTokenCookie = "refresh_token"

func setAuthCookies(w http.ResponseWriter, cfg *config.Config, res *services.AuthResult) {
	secure := cfg.AppEnv == "production"
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    res.AccessToken,
		Path:     "/",
		MaxAge:   int(cfg.AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    res.RefreshToken,
		Path:     "/api/auth",
		MaxAge:   int(cfg.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookies(w http.ResponseWriter) {
	expired := time.Unix(0, 0)
	http.SetCookie(w, &http.Cookie{Name: middleware.AccessTokenCookie, Value: "", Path: "/", Expires: expired, HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: refreshTokenCookie, Value: "", Path: "/api/auth", Expires: expired, HttpOnly: true})
}

// RegisterHandler handles POST /api/auth/register
func RegisterHandler(svc *services.AuthService, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.RegisterRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		res, err := svc.Register(r.Context(), req)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		setAuthCookies(w, cfg, res)
		respondWithData(w, http.StatusCreated, map[string]any{"user": res.User})
	}
}

// LoginHandler handles POST /api/auth/login
func LoginHandler(svc *services.AuthService, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req dtos.LoginRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		res, err := svc.Login(r.Context(), req)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		setAuthCookies(w, cfg, res)
		respondWithData(w, http.StatusOK, map[string]any{"user": res.User})
	}
}

// RefreshHandler handles POST /api/auth/refresh. The refresh token
// rotates on every use.
func RefreshHandler(svc *services.AuthService, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := ""
		if c, err := r.Cookie(refreshTokenCookie); err == nil {
			token = c.Value
		}
		res, err := svc.Refresh(r.Context(), token)
		if err != nil {
			clearAuthCookies(w)
			respondWithAppError(w, err)
			return
		}
		setAuthCookies(w, cfg, res)
		respondWithData(w, http.StatusOK, map[string]any{"user": res.User})
	}
}

// LogoutHandler handles POST /api/auth/logout
func LogoutHandler(svc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie(refreshTokenCookie); err == nil {
			if err := svc.Logout(r.Context(), c.Value); err != nil {
				respondWithAppError(w, err)
				return
			}
		}
		clearAuthCookies(w)
		respondWithData(w, http.StatusOK, map[string]any{"loggedOut": true})
	}
}

// MeHandler handles GET /api/auth/me
func MeHandler(svc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := auth.GetPrincipal(r.Context())
		if p == nil {
			respondWithError(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
			return
		}
		user, err := svc.Me(r.Context(), p.UserID)
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, map[string]any{"user": user})
	}
}

// ListPilotsHandler handles GET /api/pilots: the roster for the
// schedule assignment picker.
func ListPilotsHandler(svc *services.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pilots, err := svc.ListPilots(r.Context())
		if err != nil {
			respondWithAppError(w, err)
			return
		}
		respondWithData(w, http.StatusOK, map[string]any{"pilots": pilots})
	}
}
