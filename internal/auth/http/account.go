package http

import (
	"net/http"
	"time"

	"github.com/harborline/bms/internal/auth/domain"
	"github.com/harborline/bms/internal/auth/service"
	"github.com/harborline/bms/pkg/httpx"
)

// AccountHandler serves the account lifecycle endpoints.
type AccountHandler struct {
	Accounts *service.AccountService
	Tokens   *service.TokenService
}

type userResponse struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	EmailConfirmed bool      `json:"email_confirmed"`
	ActiveBusiness *string   `json:"active_business,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		EmailConfirmed: u.EmailConfirmed,
		ActiveBusiness: u.ActiveBusiness,
		CreatedAt:      u.CreatedAt,
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
}

func toTokenResponse(p *domain.TokenPair) tokenResponse {
	return tokenResponse{
		AccessToken:  p.AccessToken,
		RefreshToken: p.RefreshToken,
		TokenType:    p.TokenType,
		ExpiresIn:    int64(p.ExpiresIn.Seconds()),
	}
}

func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.Accounts.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, "Check your email for a confirmation code.", toUserResponse(user))
}

func (h *AccountHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Accounts.ConfirmEmail(r.Context(), req.Email, req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Email confirmed.", nil)
}

func (h *AccountHandler) ResendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Accounts.ResendConfirmation(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "If that address has an unconfirmed account, a new code is on its way.", nil)
}

func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, pair, err := h.Accounts.Login(r.Context(), req.Identifier, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Logged in.", map[string]any{
		"user":   toUserResponse(user),
		"tokens": toTokenResponse(pair),
	})
}

func (h *AccountHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	pair, err := h.Tokens.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Token refreshed.", toTokenResponse(pair))
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromCtx(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	err := h.Accounts.Logout(ctx, httpx.UserIDFromCtx(ctx), httpx.RawTokenFromCtx(ctx), claims)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Logged out.", nil)
}

func (h *AccountHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	// Same answer whether or not the address is registered.
	writeOK(w, "If that address has an account, a reset code is on its way.", nil)
}

func (h *AccountHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Accounts.ResetPassword(r.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Password reset. Please log in again.", nil)
}

func (h *AccountHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	err := h.Accounts.ChangePassword(ctx, httpx.UserIDFromCtx(ctx), req.CurrentPassword, req.NewPassword)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Password changed. Please log in again.", nil)
}

func (h *AccountHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.Accounts.RequestAccountDeletion(ctx, httpx.UserIDFromCtx(ctx)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Check your email for a deletion code.", nil)
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	claims, ok := httpx.ClaimsFromCtx(ctx)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	err := h.Accounts.DeleteAccount(ctx,
		httpx.UserIDFromCtx(ctx), req.Code, httpx.RawTokenFromCtx(ctx), claims)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "Account deleted.", nil)
}

func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.Accounts.Profile(ctx, httpx.UserIDFromCtx(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "", toUserResponse(user))
}

func (h *AccountHandler) UsernameAvailable(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		writeError(w, http.StatusBadRequest, "Query parameter 'username' is required.")
		return
	}

	free, err := h.Accounts.UsernameAvailable(r.Context(), username)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeOK(w, "", map[string]any{"username": username, "available": free})
}
