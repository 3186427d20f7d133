package auth

import "time"

// Gender values accepted on registration and profile update.
const (
	GenderMale         = "male"
	GenderFemale       = "female"
	GenderNotSpecified = "not_specified"
)

// Account represents a registered user. Email is stored lowercase; the
// unique index on the column is the authority on collisions.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	BirthDate    *string
	Gender       *string
	IsSuperuser  bool
	IsVerified   bool
	CreatedAt    time.Time
}
