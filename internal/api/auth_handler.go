package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/taskward-app/taskward-api/internal/api/shared"
	"github.com/taskward-app/taskward-api/internal/platform/logger"
	"github.com/taskward-app/taskward-api/internal/service/auth"
	"github.com/taskward-app/taskward-api/internal/service/magiclink"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	googleLogin *auth.GoogleLoginService
	magicLinks  *magiclink.Service
	frontendURL string
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	googleLogin *auth.GoogleLoginService,
	magicLinks *magiclink.Service,
	frontendURL string,
	log *slog.Logger,
) *AuthHandler {
	if log == nil {
		log = slog.Default()
	}

	return &AuthHandler{
		googleLogin: googleLogin,
		magicLinks:  magicLinks,
		frontendURL: frontendURL,
		validator:   validator.New(),
		logger:      log.With(slog.String("component", "auth_handler")),
	}
}

// GoogleLogin handles POST /auth/google. The client completes the Google
// OAuth flow and posts the resulting profile; the account is created or
// refreshed and a session token returned.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req GoogleLoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	token, user, err := h.googleLogin.Login(r.Context(), auth.GoogleProfile{
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Token: token,
		User:  NewUserResponse(user),
	})
}

// SendMagicLink handles POST /auth/magic-link. A sign-in link is issued and
// emailed to the given address, creating the account on first sight.
func (h *AuthHandler) SendMagicLink(w http.ResponseWriter, r *http.Request) {
	var req MagicLinkRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	if err := h.magicLinks.Issue(r.Context(), req.Email); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MessageResponse{
		Message: "Magic link sent",
	})
}

// VerifyMagicLink handles GET /auth/verify?token=. It is the target of the
// emailed link: the token is checked without being consumed, then the browser
// is redirected to the frontend, which redeems the token via POST
// /auth/verify-token. Failures redirect to the frontend error page so the
// user never lands on a bare JSON response.
func (h *AuthHandler) VerifyMagicLink(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	token := r.URL.Query().Get("token")
	if token == "" {
		h.redirectToError(w, r, "missing_token")
		return
	}

	if _, err := h.magicLinks.Validate(r.Context(), token); err != nil {
		log.Debug("magic link validation failed during redirect",
			slog.String("reason", GetSafeErrorMessage(err)))
		h.redirectToError(w, r, errorCodeForRedirect(err))
		return
	}

	callbackURL := fmt.Sprintf("%s/auth/callback?token=%s",
		h.frontendURL, url.QueryEscape(token))
	http.Redirect(w, r, callbackURL, http.StatusFound)
}

// VerifyToken handles POST /auth/verify-token. It redeems a magic link token
// exactly once, returning a session token and the user.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req VerifyTokenRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	sessionToken, user, err := h.magicLinks.Redeem(r.Context(), req.Token)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		Token: sessionToken,
		User:  NewUserResponse(user),
	})
}

// redirectToError sends the browser to the frontend error page with a
// machine-readable reason code.
func (h *AuthHandler) redirectToError(w http.ResponseWriter, r *http.Request, code string) {
	errorURL := fmt.Sprintf("%s/auth/error?code=%s", h.frontendURL, url.QueryEscape(code))
	http.Redirect(w, r, errorURL, http.StatusFound)
}

// errorCodeForRedirect maps magic link errors to redirect reason codes.
func errorCodeForRedirect(err error) string {
	switch {
	case errors.Is(err, magiclink.ErrAlreadyUsed):
		return "link_used"
	case errors.Is(err, magiclink.ErrExpired):
		return "link_expired"
	case errors.Is(err, magiclink.ErrInvalidLink):
		return "invalid_link"
	default:
		return "server_error"
	}
}
