package handlers

import (
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/jwebster45206/adventure-relay/internal/services"
)

const sessionCookieName = "relay_session"

// IndexHandler serves the static web client and manages the browser
// session cookie. A request arriving without a valid session gets a
// fresh one; the cookie identifies the browser, not the player.
type IndexHandler struct {
	staticDir  string
	sessions   *services.SessionStore
	secure     bool
	logger     *slog.Logger
	fileServer http.Handler
}

func NewIndexHandler(staticDir string, sessions *services.SessionStore, secure bool, logger *slog.Logger) *IndexHandler {
	return &IndexHandler{
		staticDir:  staticDir,
		sessions:   sessions,
		secure:     secure,
		logger:     logger,
		fileServer: http.FileServer(http.Dir(staticDir)),
	}
}

func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.ensureSession(w, r)

	if r.URL.Path == "/" {
		http.ServeFile(w, r, filepath.Join(h.staticDir, "index.html"))
		return
	}
	h.fileServer.ServeHTTP(w, r)
}

func (h *IndexHandler) ensureSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		ok, err := h.sessions.Validate(ctx, cookie.Value)
		if err != nil {
			h.logger.Warn("Session lookup failed", "error", err)
			return
		}
		if ok {
			if err := h.sessions.Touch(ctx, cookie.Value); err != nil {
				h.logger.Debug("Session touch failed", "error", err)
			}
			return
		}
	}

	id, err := h.sessions.Issue(ctx)
	if err != nil {
		h.logger.Warn("Failed to issue session", "error", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
