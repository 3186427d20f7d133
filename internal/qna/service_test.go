package qna_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/askhub/askhub/internal/qna"
	"github.com/askhub/askhub/internal/shared"
	_ "github.com/askhub/askhub/testing"
)

type memRepo struct {
	mu        sync.Mutex
	nextQ     int64
	nextA     int64
	questions map[int64]qna.Question
	answers   map[int64]qna.Answer
}

func newMemRepo() *memRepo {
	return &memRepo{
		questions: make(map[int64]qna.Question),
		answers:   make(map[int64]qna.Answer),
	}
}

func (m *memRepo) ListQuestions(ctx context.Context, search string, limit, offset int) ([]qna.Question, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var questions []qna.Question
	for _, q := range m.questions {
		if search == "" || strings.Contains(strings.ToLower(q.Text), strings.ToLower(search)) {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID > questions[j].ID })
	total := len(questions)
	if offset > len(questions) {
		offset = len(questions)
	}
	questions = questions[offset:]
	if limit > 0 && limit < len(questions) {
		questions = questions[:limit]
	}
	return questions, total, nil
}

func (m *memRepo) GetQuestion(ctx context.Context, id int64) (*qna.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := q
	return &clone, nil
}

func (m *memRepo) InsertQuestion(ctx context.Context, question *qna.Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.questions {
		if existing.Text == question.Text {
			return shared.ErrDuplicate
		}
	}
	m.nextQ++
	question.ID = m.nextQ
	question.CreatedAt = time.Now()
	m.questions[question.ID] = *question
	return nil
}

func (m *memRepo) DeleteQuestion(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.questions, id)
	for answerID, a := range m.answers {
		if a.QuestionID == id {
			delete(m.answers, answerID)
		}
	}
	return nil
}

func (m *memRepo) ListAnswersByQuestion(ctx context.Context, questionID int64) ([]qna.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var answers []qna.Answer
	for _, a := range m.answers {
		if a.QuestionID == questionID {
			answers = append(answers, a)
		}
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID < answers[j].ID })
	return answers, nil
}

func (m *memRepo) ListAnswers(ctx context.Context, search string, limit, offset int) ([]qna.Answer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var answers []qna.Answer
	for _, a := range m.answers {
		answers = append(answers, a)
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].ID > answers[j].ID })
	return answers, len(answers), nil
}

func (m *memRepo) GetAnswer(ctx context.Context, id int64) (*qna.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.answers[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	clone := a
	return &clone, nil
}

func (m *memRepo) InsertAnswer(ctx context.Context, answer *qna.Answer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextA++
	answer.ID = m.nextA
	answer.CreatedAt = time.Now()
	m.answers[answer.ID] = *answer
	return nil
}

func (m *memRepo) DeleteAnswer(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.answers[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.answers, id)
	return nil
}

var _ qna.Repository = (*memRepo)(nil)

func TestCreateQuestion(t *testing.T) {
	service := qna.NewService(newMemRepo())

	question, err := service.CreateQuestion(context.Background(), "author-1", "Why is the sky blue?")
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	if question.ID == 0 || question.AuthorID != "author-1" {
		t.Fatalf("unexpected question: %+v", question)
	}

	if _, err := service.CreateQuestion(context.Background(), "author-2", "Why is the sky blue?"); !errors.Is(err, shared.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for repeated text, got %v", err)
	}
}

func TestDeleteQuestion_OwnershipAndCascade(t *testing.T) {
	repo := newMemRepo()
	service := qna.NewService(repo)

	question, err := service.CreateQuestion(context.Background(), "owner", "What is idempotency?")
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	answer, err := service.CreateAnswer(context.Background(), "someone-else", question.ID, "Doing it twice is the same as once.")
	if err != nil {
		t.Fatalf("create answer: %v", err)
	}

	if err := service.DeleteQuestion(context.Background(), "intruder", question.ID); !errors.Is(err, shared.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}
	if err := service.DeleteQuestion(context.Background(), "owner", question.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := service.GetAnswer(context.Background(), answer.ID); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("answers must go with their question, got %v", err)
	}
	if err := service.DeleteQuestion(context.Background(), "owner", question.ID); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing question, got %v", err)
	}
}

func TestCreateAnswer_MissingQuestion(t *testing.T) {
	service := qna.NewService(newMemRepo())

	if _, err := service.CreateAnswer(context.Background(), "u", 404, "no question here"); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAnswer_Ownership(t *testing.T) {
	service := qna.NewService(newMemRepo())

	question, err := service.CreateQuestion(context.Background(), "asker", "Best text editor?")
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	answer, err := service.CreateAnswer(context.Background(), "answerer", question.ID, "The one you know.")
	if err != nil {
		t.Fatalf("create answer: %v", err)
	}

	// The question author does not own the answer.
	if err := service.DeleteAnswer(context.Background(), "asker", answer.ID); !errors.Is(err, shared.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := service.DeleteAnswer(context.Background(), "answerer", answer.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestGetQuestion_WithAnswers(t *testing.T) {
	service := qna.NewService(newMemRepo())

	question, err := service.CreateQuestion(context.Background(), "asker", "Tabs or spaces?")
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	first, _ := service.CreateAnswer(context.Background(), "a", question.ID, "Tabs.")
	second, _ := service.CreateAnswer(context.Background(), "b", question.ID, "Spaces.")

	got, answers, err := service.GetQuestion(context.Background(), question.ID)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if got.ID != question.ID {
		t.Fatalf("wrong question returned")
	}
	if len(answers) != 2 || answers[0].ID != first.ID || answers[1].ID != second.ID {
		t.Fatalf("answers out of order or missing: %+v", answers)
	}
}

func TestListQuestions_Search(t *testing.T) {
	service := qna.NewService(newMemRepo())

	if _, err := service.CreateQuestion(context.Background(), "a", "How do goroutines work?"); err != nil {
		t.Fatalf("create question: %v", err)
	}
	if _, err := service.CreateQuestion(context.Background(), "a", "What is a channel?"); err != nil {
		t.Fatalf("create question: %v", err)
	}

	questions, total, err := service.ListQuestions(context.Background(), "goroutine", 50, 0)
	if err != nil {
		t.Fatalf("list questions: %v", err)
	}
	if total != 1 || len(questions) != 1 {
		t.Fatalf("expected one match, got %d/%d", len(questions), total)
	}
}
