package qna

import "time"

type createQuestionRequest struct {
	Text string `json:"text" validate:"required"`
}

type createAnswerRequest struct {
	Text string `json:"text" validate:"required"`
}

type questionResponse struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"author_id"`
	CreatedAt time.Time `json:"created_at"`
}

type questionDetailResponse struct {
	questionResponse
	Answers []answerResponse `json:"answers"`
}

type answerResponse struct {
	ID         int64     `json:"id"`
	QuestionID int64     `json:"question_id"`
	UserID     string    `json:"user_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

func toQuestionResponse(q Question) questionResponse {
	return questionResponse{ID: q.ID, Text: q.Text, AuthorID: q.AuthorID, CreatedAt: q.CreatedAt}
}

func toAnswerResponse(a Answer) answerResponse {
	return answerResponse{ID: a.ID, QuestionID: a.QuestionID, UserID: a.UserID, Text: a.Text, CreatedAt: a.CreatedAt}
}
