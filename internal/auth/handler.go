package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/askhub/askhub/internal/platform/httpx"
	"github.com/askhub/askhub/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Get("/verify", h.handleVerify)
	r.Post("/login", h.handleLogin)
	r.Post("/refresh", h.handleRefresh)
	r.Group(func(pr chi.Router) {
		pr.Use(RequireAccount(h.service))
		pr.Put("/update", h.handleUpdate)
		pr.Put("/change-password", h.handleChangePassword)
		pr.Delete("/delete", h.handleDelete)
	})
}

func (h *Handler) decodeValid(r *http.Request, target any) error {
	if err := httpx.DecodeJSON(r, target); err != nil {
		return err
	}
	return h.validator.Struct(target)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	account, pair, err := h.service.Register(r.Context(), RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		BirthDate: req.BirthDate,
		Gender:    req.Gender,
	})
	if err != nil {
		h.logger.Warn("register", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("account registered", slog.String("user_id", account.ID))
	httpx.JSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "bearer",
		UserID:       account.ID,
	})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		httpx.RespondError(w, shared.ErrInvalidToken)
		return
	}
	account, err := h.service.VerifyEmail(r.Context(), token)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("email verified", slog.String("user_id", account.ID))
	httpx.JSON(w, http.StatusOK, messageResponse{Message: "email verified"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	account, pair, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("login", slog.String("user_id", account.ID))
	httpx.JSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "bearer",
		UserID:       account.ID,
	})
}

// handleRefresh accepts the refresh token in the JSON body or the bearer
// header; the body wins when both are present.
func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	_ = httpx.DecodeJSON(r, &req)
	token := req.RefreshToken
	if token == "" {
		token = BearerToken(r)
	}
	if token == "" {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "refresh token required")
		return
	}

	account, pair, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, tokenResponse{
		AccessToken:  pair.Access,
		RefreshToken: pair.Refresh,
		TokenType:    "bearer",
		UserID:       account.ID,
	})
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	if account == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	var req updateProfileRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), account, UpdateInput{
		Email:  req.Email,
		Gender: req.Gender,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("profile updated", slog.String("user_id", updated.ID))
	httpx.JSON(w, http.StatusOK, profileResponse{
		Message:  "profile updated",
		Username: updated.Username,
		Email:    updated.Email,
		Gender:   updated.Gender,
	})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	if account == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	var req changePasswordRequest
	if err := h.decodeValid(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	if _, err := h.service.ChangePassword(r.Context(), account, req.CurrentPassword, req.NewPassword); err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("password changed", slog.String("user_id", account.ID))
	httpx.JSON(w, http.StatusOK, messageResponse{Message: "password changed"})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	account := AccountFromContext(r.Context())
	if account == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	if err := h.service.Delete(r.Context(), account); err != nil {
		h.logger.Error("delete account", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("account deleted", slog.String("user_id", account.ID))
	w.WriteHeader(http.StatusNoContent)
}

func validationDetail(err error) string {
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return errs[0].Error()
	}
	return "invalid request body"
}
