package qna

import "time"

// Question belongs to exactly one account. Deleting the author cascades to
// the question; deleting the question cascades to its answers.
type Question struct {
	ID        int64
	Text      string
	AuthorID  string
	CreatedAt time.Time
}

// Answer belongs to exactly one question and one account.
type Answer struct {
	ID         int64
	QuestionID int64
	UserID     string
	Text       string
	CreatedAt  time.Time
}
