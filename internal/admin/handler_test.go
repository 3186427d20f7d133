package admin_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/askhub/askhub/internal/admin"
	"github.com/askhub/askhub/internal/auth"
	"github.com/askhub/askhub/internal/qna"
	"github.com/askhub/askhub/internal/shared"
	_ "github.com/askhub/askhub/testing"
)

type accountStore struct {
	mu       sync.Mutex
	accounts map[string]auth.Account
}

func newAccountStore() *accountStore {
	return &accountStore{accounts: make(map[string]auth.Account)}
}

func (s *accountStore) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.accounts {
		if account.Email == email {
			clone := account
			return &clone, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *accountStore) FindByID(ctx context.Context, id string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := account
	return &clone, nil
}

func (s *accountStore) Insert(ctx context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = *account
	return nil
}

func (s *accountStore) Update(ctx context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.ID] = *account
	return nil
}

func (s *accountStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *accountStore) List(ctx context.Context, search string, limit, offset int) ([]auth.Account, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var accounts []auth.Account
	for _, account := range s.accounts {
		accounts = append(accounts, account)
	}
	return accounts, len(accounts), nil
}

var _ auth.Repository = (*accountStore)(nil)

type contentStore struct {
	mu        sync.Mutex
	questions map[int64]qna.Question
	answers   map[int64]qna.Answer
}

func newContentStore() *contentStore {
	return &contentStore{
		questions: make(map[int64]qna.Question),
		answers:   make(map[int64]qna.Answer),
	}
}

func (s *contentStore) ListQuestions(ctx context.Context, search string, limit, offset int) ([]qna.Question, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var questions []qna.Question
	for _, q := range s.questions {
		questions = append(questions, q)
	}
	return questions, len(questions), nil
}

func (s *contentStore) GetQuestion(ctx context.Context, id int64) (*qna.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := q
	return &clone, nil
}

func (s *contentStore) InsertQuestion(ctx context.Context, question *qna.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions[question.ID] = *question
	return nil
}

func (s *contentStore) DeleteQuestion(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.questions, id)
	return nil
}

func (s *contentStore) ListAnswersByQuestion(ctx context.Context, questionID int64) ([]qna.Answer, error) {
	return nil, nil
}

func (s *contentStore) ListAnswers(ctx context.Context, search string, limit, offset int) ([]qna.Answer, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var answers []qna.Answer
	for _, a := range s.answers {
		answers = append(answers, a)
	}
	return answers, len(answers), nil
}

func (s *contentStore) GetAnswer(ctx context.Context, id int64) (*qna.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := a
	return &clone, nil
}

func (s *contentStore) InsertAnswer(ctx context.Context, answer *qna.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[answer.ID] = *answer
	return nil
}

func (s *contentStore) DeleteAnswer(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.answers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(s.answers, id)
	return nil
}

var _ qna.Repository = (*contentStore)(nil)

type fixture struct {
	router   chi.Router
	accounts *accountStore
	content  *contentStore
	sessions *shared.SessionManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	accounts := newAccountStore()
	content := newContentStore()
	sessions := shared.NewSessionManager(client, "askhub_admin", time.Hour, false)

	handler := admin.NewHandler(slog.Default(), accounts, content, sessions)
	r := chi.NewRouter()
	r.Route("/admin", func(ar chi.Router) { handler.MountRoutes(ar) })

	return &fixture{router: r, accounts: accounts, content: content, sessions: sessions}
}

func (f *fixture) addAccount(t *testing.T, id, email, password string, superuser bool) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if err := f.accounts.Insert(context.Background(), &auth.Account{
		ID:           id,
		Username:     id,
		Email:        email,
		PasswordHash: hash,
		IsSuperuser:  superuser,
		IsVerified:   true,
	}); err != nil {
		t.Fatalf("insert account: %v", err)
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "askhub_admin" && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in response")
	return nil
}

func (f *fixture) login(t *testing.T, email, password string) *http.Cookie {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/admin/login", map[string]any{
		"email": email, "password": password,
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login status: %d body=%s", rec.Code, rec.Body)
	}
	return sessionCookie(t, rec)
}

func TestAdminLogin_RejectsNonSuperuser(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "user-1", "user@x.com", "hunter2hunter2", false)
	f.addAccount(t, "root-1", "root@x.com", "rootpassword1", true)

	rec := f.do(t, http.MethodPost, "/admin/login", map[string]any{
		"email": "user@x.com", "password": "hunter2hunter2",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-superuser login status: %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/admin/login", map[string]any{
		"email": "root@x.com", "password": "wrong-password",
	}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong password login status: %d", rec.Code)
	}

	f.login(t, "root@x.com", "rootpassword1")
}

func TestAdminRoutes_SessionGated(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "root-1", "root@x.com", "rootpassword1", true)
	f.addAccount(t, "user-1", "user@x.com", "hunter2hunter2", false)

	rec := f.do(t, http.MethodGet, "/admin/users", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no session status: %d", rec.Code)
	}

	cookie := f.login(t, "root@x.com", "rootpassword1")

	rec = f.do(t, http.MethodGet, "/admin/users", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("gated list status: %d body=%s", rec.Code, rec.Body)
	}
	var page struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
		Total int `json:"total"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("expected two accounts, got %d", page.Total)
	}

	rec = f.do(t, http.MethodDelete, "/admin/users/user-1", nil, cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete user status: %d", rec.Code)
	}
	rec = f.do(t, http.MethodDelete, "/admin/users/user-1", nil, cookie)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("delete missing user status: %d", rec.Code)
	}
}

func TestAdminLogout(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "root-1", "root@x.com", "rootpassword1", true)

	cookie := f.login(t, "root@x.com", "rootpassword1")

	rec := f.do(t, http.MethodPost, "/admin/logout", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout status: %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/admin/users", nil, cookie)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("session survived logout: %d", rec.Code)
	}
}

func TestAdminSession_DemotedSuperuser(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "root-1", "root@x.com", "rootpassword1", true)

	cookie := f.login(t, "root@x.com", "rootpassword1")

	// Revoke the superuser flag behind the session's back.
	account, err := f.accounts.FindByID(context.Background(), "root-1")
	if err != nil {
		t.Fatalf("find account: %v", err)
	}
	account.IsSuperuser = false
	if err := f.accounts.Update(context.Background(), account); err != nil {
		t.Fatalf("update account: %v", err)
	}

	rec := f.do(t, http.MethodGet, "/admin/users", nil, cookie)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("demoted superuser status: %d", rec.Code)
	}
}

func TestAdminContentModeration(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "root-1", "root@x.com", "rootpassword1", true)
	cookie := f.login(t, "root@x.com", "rootpassword1")

	f.content.questions[1] = qna.Question{ID: 1, Text: "spam?", AuthorID: "user-1", CreatedAt: time.Now()}
	f.content.answers[1] = qna.Answer{ID: 1, QuestionID: 1, UserID: "user-1", Text: "spam!", CreatedAt: time.Now()}

	rec := f.do(t, http.MethodGet, "/admin/questions", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list questions status: %d", rec.Code)
	}
	rec = f.do(t, http.MethodGet, "/admin/answers", nil, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("list answers status: %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/admin/answers/1", nil, cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete answer status: %d", rec.Code)
	}
	rec = f.do(t, http.MethodDelete, "/admin/questions/1", nil, cookie)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete question status: %d", rec.Code)
	}
	rec = f.do(t, http.MethodDelete, "/admin/questions/not-a-number", nil, cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad question id status: %d", rec.Code)
	}
}
