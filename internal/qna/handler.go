package qna

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/askhub/askhub/internal/auth"
	"github.com/askhub/askhub/internal/platform/httpx"
	"github.com/askhub/askhub/internal/shared"
)

// Handler wires HTTP endpoints for questions and answers. Reads are public;
// writes require an authenticated, verified account.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	authService *auth.Service
	validator   *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authService *auth.Service) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		authService: authService,
		validator:   validator.New(),
	}
}

// MountQuestionRoutes registers /questions routes.
func (h *Handler) MountQuestionRoutes(r chi.Router) {
	r.Get("/", h.listQuestions)
	r.Get("/{id}", h.getQuestion)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireAccount(h.authService))
		pr.Post("/", h.createQuestion)
		pr.Delete("/{id}", h.deleteQuestion)
		pr.Post("/{id}/answers", h.createAnswer)
	})
}

// MountAnswerRoutes registers /answers routes.
func (h *Handler) MountAnswerRoutes(r chi.Router) {
	r.Get("/{id}", h.getAnswer)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireAccount(h.authService))
		pr.Delete("/{id}", h.deleteAnswer)
	})
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	questions, _, err := h.service.ListQuestions(r.Context(), r.URL.Query().Get("search"), limit, offset)
	if err != nil {
		h.logger.Error("list questions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	out := make([]questionResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, toQuestionResponse(q))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid question id")
		return
	}

	question, answers, err := h.service.GetQuestion(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	detail := questionDetailResponse{
		questionResponse: toQuestionResponse(*question),
		Answers:          make([]answerResponse, 0, len(answers)),
	}
	for _, a := range answers {
		detail.Answers = append(detail.Answers, toAnswerResponse(a))
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	if account == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	var req createQuestionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "text is required")
		return
	}

	question, err := h.service.CreateQuestion(r.Context(), account.ID, req.Text)
	if err != nil {
		h.logger.Warn("create question", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("question created", slog.Int64("question_id", question.ID), slog.String("user_id", account.ID))
	httpx.JSON(w, http.StatusOK, toQuestionResponse(*question))
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	if account == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid question id")
		return
	}

	if err := h.service.DeleteQuestion(r.Context(), account.ID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("question deleted", slog.Int64("question_id", id), slog.String("user_id", account.ID))
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "question deleted"})
}

func (h *Handler) createAnswer(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	if account == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	questionID, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid question id")
		return
	}

	var req createAnswerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "text is required")
		return
	}

	answer, err := h.service.CreateAnswer(r.Context(), account.ID, questionID, req.Text)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("answer created", slog.Int64("answer_id", answer.ID), slog.String("user_id", account.ID))
	httpx.JSON(w, http.StatusOK, toAnswerResponse(*answer))
}

func (h *Handler) getAnswer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid answer id")
		return
	}

	answer, err := h.service.GetAnswer(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toAnswerResponse(*answer))
}

func (h *Handler) deleteAnswer(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	if account == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid answer id")
		return
	}

	if err := h.service.DeleteAnswer(r.Context(), account.ID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}

	h.logger.Info("answer deleted", slog.Int64("answer_id", id), slog.String("user_id", account.ID))
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "answer deleted"})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
