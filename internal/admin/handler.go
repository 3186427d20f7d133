// Package admin exposes the session-gated back-office API. Only superuser
// accounts may log in; the gate is a Redis-backed cookie session, separate
// from the bearer tokens used by the public API.
package admin

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/askhub/askhub/internal/auth"
	"github.com/askhub/askhub/internal/platform/httpx"
	"github.com/askhub/askhub/internal/qna"
	"github.com/askhub/askhub/internal/shared"
)

// Handler wires the back-office endpoints.
type Handler struct {
	logger    *slog.Logger
	accounts  auth.Repository
	content   qna.Repository
	sessions  *shared.SessionManager
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, accounts auth.Repository, content qna.Repository, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:    logger,
		accounts:  accounts,
		content:   content,
		sessions:  sessions,
		validator: validator.New(),
	}
}

// MountRoutes registers admin routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Group(func(pr chi.Router) {
		pr.Use(h.requireSuperuser)
		pr.Get("/users", h.listUsers)
		pr.Delete("/users/{id}", h.deleteUser)
		pr.Get("/questions", h.listQuestions)
		pr.Delete("/questions/{id}", h.deleteQuestion)
		pr.Get("/answers", h.listAnswers)
		pr.Delete("/answers/{id}", h.deleteAnswer)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email and password are required")
		return
	}

	account, err := h.accounts.FindByEmail(r.Context(), auth.NormalizeEmail(req.Email))
	if err != nil || !auth.CheckPassword(req.Password, account.PasswordHash) || !account.IsSuperuser {
		httpx.RespondError(w, shared.ErrInvalidCredentials)
		return
	}

	sess, err := h.sessions.Load(r.Context(), r)
	if err != nil {
		h.logger.Error("load admin session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	sess.SetUser(account.ID)
	if err := h.sessions.Commit(r.Context(), w, sess); err != nil {
		h.logger.Error("commit admin session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("admin login", slog.String("user_id", account.ID))
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "logged in"})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Load(r.Context(), r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.sessions.Destroy(sess)
	if err := h.sessions.Commit(r.Context(), w, sess); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// requireSuperuser loads the cookie session and checks the bound account is
// still a superuser.
func (h *Handler) requireSuperuser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessions.Load(r.Context(), r)
		if err != nil || sess.User() == "" {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		account, err := h.accounts.FindByID(r.Context(), sess.User())
		if err != nil || !account.IsSuperuser {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithSession(r.Context(), sess)))
	})
}

type userSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	IsSuperuser bool   `json:"is_superuser"`
	IsVerified  bool   `json:"is_verified"`
}

type pagedResponse[T any] struct {
	Items  []T `json:"items"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	search, limit, offset := pageParams(r)
	accounts, total, err := h.accounts.List(r.Context(), search, limit, offset)
	if err != nil {
		h.logger.Error("admin list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	items := make([]userSummary, 0, len(accounts))
	for _, a := range accounts {
		items = append(items, userSummary{
			ID:          a.ID,
			Username:    a.Username,
			Email:       a.Email,
			IsSuperuser: a.IsSuperuser,
			IsVerified:  a.IsVerified,
		})
	}
	httpx.JSON(w, http.StatusOK, pagedResponse[userSummary]{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.accounts.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("admin deleted user", slog.String("user_id", id))
	w.WriteHeader(http.StatusNoContent)
}

type questionSummary struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	AuthorID  string `json:"author_id"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	search, limit, offset := pageParams(r)
	questions, total, err := h.content.ListQuestions(r.Context(), search, limit, offset)
	if err != nil {
		h.logger.Error("admin list questions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	items := make([]questionSummary, 0, len(questions))
	for _, q := range questions {
		items = append(items, questionSummary{
			ID:        q.ID,
			Text:      q.Text,
			AuthorID:  q.AuthorID,
			CreatedAt: q.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	httpx.JSON(w, http.StatusOK, pagedResponse[questionSummary]{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid question id")
		return
	}
	if err := h.content.DeleteQuestion(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("admin deleted question", slog.Int64("question_id", id))
	w.WriteHeader(http.StatusNoContent)
}

type answerSummary struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"question_id"`
	UserID     string `json:"user_id"`
	Text       string `json:"text"`
	CreatedAt  string `json:"created_at"`
}

func (h *Handler) listAnswers(w http.ResponseWriter, r *http.Request) {
	search, limit, offset := pageParams(r)
	answers, total, err := h.content.ListAnswers(r.Context(), search, limit, offset)
	if err != nil {
		h.logger.Error("admin list answers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	items := make([]answerSummary, 0, len(answers))
	for _, a := range answers {
		items = append(items, answerSummary{
			ID:         a.ID,
			QuestionID: a.QuestionID,
			UserID:     a.UserID,
			Text:       a.Text,
			CreatedAt:  a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	httpx.JSON(w, http.StatusOK, pagedResponse[answerSummary]{Items: items, Total: total, Limit: limit, Offset: offset})
}

func (h *Handler) deleteAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid answer id")
		return
	}
	if err := h.content.DeleteAnswer(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("admin deleted answer", slog.Int64("answer_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func pageParams(r *http.Request) (string, int, int) {
	limit := 20
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return r.URL.Query().Get("search"), limit, offset
}
