package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"adaptrack-server/internal/repos"
	pkghttpx "adaptrack-server/pkg/httpx"
)

// Register handles POST /auth/register
func Register(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type registerReq struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}

		ctx := r.Context()
		var req registerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid json", err))
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)
		if req.Username == "" || req.Email == "" || req.Password == "" {
			writeError(w, r, pkghttpx.BadRequest("username, email and password are required", nil))
			return
		}
		u, err := d.Repo.Users.Create(ctx, req.Username, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, repos.ErrDuplicate) {
				writeError(w, r, pkghttpx.Conflict("username or email already taken", err))
				return
			}
			writeError(w, r, pkghttpx.Internal("failed to create user", err))
			return
		}
		writeJSON(w, http.StatusCreated, u)
	}
}

// Login handles POST /auth/login
func Login(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type loginReq struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		type loginResp struct {
			Token string `json:"token"`
			User  any    `json:"user"`
		}

		ctx := r.Context()
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, pkghttpx.BadRequest("invalid json", err))
			return
		}
		u, err := d.Repo.Users.Authenticate(ctx, req.Username, req.Password)
		if err != nil {
			if errors.Is(err, repos.ErrBadCredentials) {
				writeError(w, r, pkghttpx.Unauthorized("invalid username or password", err))
				return
			}
			writeError(w, r, pkghttpx.Internal("login failed", err))
			return
		}
		token, err := d.Sessions.Issue(ctx, u.ID)
		if err != nil {
			writeError(w, r, pkghttpx.Internal("failed to issue session", err))
			return
		}
		writeJSON(w, http.StatusOK, loginResp{Token: token, User: u})
	}
}

// Logout handles POST /auth/logout
func Logout(d Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			writeError(w, r, pkghttpx.Unauthorized("missing session token", nil))
			return
		}
		if err := d.Sessions.Revoke(r.Context(), token); err != nil {
			writeError(w, r, pkghttpx.Internal("failed to revoke session", err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	}
}

// BearerToken extracts the session token from the Authorization header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
