package qna

import (
	"context"

	"github.com/askhub/askhub/internal/shared"
)

// Service wraps question and answer business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListQuestions returns a page of questions for public browsing.
func (s *Service) ListQuestions(ctx context.Context, search string, limit, offset int) ([]Question, int, error) {
	return s.repo.ListQuestions(ctx, search, limit, offset)
}

// GetQuestion returns a question together with its answers.
func (s *Service) GetQuestion(ctx context.Context, id int64) (*Question, []Answer, error) {
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	answers, err := s.repo.ListAnswersByQuestion(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return question, answers, nil
}

// CreateQuestion posts a new question authored by the given account.
func (s *Service) CreateQuestion(ctx context.Context, authorID, text string) (*Question, error) {
	question := &Question{Text: text, AuthorID: authorID}
	if err := s.repo.InsertQuestion(ctx, question); err != nil {
		return nil, err
	}
	return question, nil
}

// DeleteQuestion removes a question and, by cascade, its answers. Only the
// owning account may delete it.
func (s *Service) DeleteQuestion(ctx context.Context, requesterID string, id int64) error {
	question, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if question.AuthorID != requesterID {
		return shared.ErrForbidden
	}
	return s.repo.DeleteQuestion(ctx, id)
}

// CreateAnswer posts an answer to an existing question.
func (s *Service) CreateAnswer(ctx context.Context, userID string, questionID int64, text string) (*Answer, error) {
	if _, err := s.repo.GetQuestion(ctx, questionID); err != nil {
		return nil, err
	}
	answer := &Answer{QuestionID: questionID, UserID: userID, Text: text}
	if err := s.repo.InsertAnswer(ctx, answer); err != nil {
		return nil, err
	}
	return answer, nil
}

// GetAnswer returns a single answer for public viewing.
func (s *Service) GetAnswer(ctx context.Context, id int64) (*Answer, error) {
	return s.repo.GetAnswer(ctx, id)
}

// DeleteAnswer removes an answer. Only the owning account may delete it.
func (s *Service) DeleteAnswer(ctx context.Context, requesterID string, id int64) error {
	answer, err := s.repo.GetAnswer(ctx, id)
	if err != nil {
		return err
	}
	if answer.UserID != requesterID {
		return shared.ErrForbidden
	}
	return s.repo.DeleteAnswer(ctx, id)
}
