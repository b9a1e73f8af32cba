package routehandlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/coreybb/dietlog/auth"
	"github.com/coreybb/dietlog/webutil"
)

// SessionCookie describes the client-side credential issued at login.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type UserHandler struct {
	Auth   *auth.Service
	Cookie SessionCookie
}

func NewUserHandler(svc *auth.Service, cookie SessionCookie) *UserHandler {
	return &UserHandler{Auth: svc, Cookie: cookie}
}

type userNameRequest struct {
	Name string `json:"name"`
}

func (h *UserHandler) HandleGetUsers(w http.ResponseWriter, r *http.Request) error {
	users, err := h.Auth.ListUsers(r.Context())
	if err != nil {
		return err
	}
	webutil.RespondWithJSON(w, http.StatusOK, map[string]any{"users": users})
	return nil
}

func (h *UserHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) error {
	var req userNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Name) == "" {
		return webutil.ErrBadRequest("Name is required")
	}

	if err := h.Auth.Register(r.Context(), req.Name); err != nil {
		return err
	}
	webutil.RespondEmpty(w, http.StatusCreated)
	return nil
}

// HandleLogin issues a fresh session and hands it to the client as a cookie.
// A previous session for the same user stops working.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) error {
	var req userNameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Name) == "" {
		return webutil.ErrBadRequest("Name is required")
	}

	token, err := h.Auth.Login(r.Context(), req.Name)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.Cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.Cookie.TTL.Seconds()),
		Expires:  time.Now().Add(h.Cookie.TTL),
		HttpOnly: true,
		Secure:   h.Cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	webutil.RespondEmpty(w, http.StatusOK)
	return nil
}
