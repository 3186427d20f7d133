package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/askhub/askhub/internal/shared"
)

// Mailer delivers outbound mail best effort. Failures are logged by the
// caller, never retried here.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// TokenPair is the access/refresh pair returned by login, register, and
// refresh. Refresh always rotates: a fresh pair, never an extension.
type TokenPair struct {
	Access  string
	Refresh string
}

// Service wraps the account lifecycle and identity verification rules.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	issuer  *Issuer
	mailer  Mailer
	secret  []byte
	baseURL string
}

// NewService constructs a Service.
func NewService(logger *slog.Logger, repo Repository, issuer *Issuer, mailer Mailer, cfg TokenConfig, baseURL string) *Service {
	return &Service{
		logger:  logger,
		repo:    repo,
		issuer:  issuer,
		mailer:  mailer,
		secret:  cfg.Secret,
		baseURL: baseURL,
	}
}

// NormalizeEmail lowercases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterInput carries validated registration fields.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	BirthDate *string
	Gender    *string
}

// Register creates an unverified account, emails a verification link, and
// returns the account with its first token pair.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*Account, TokenPair, error) {
	email := NormalizeEmail(input.Email)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, TokenPair{}, shared.ErrEmailTaken
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, TokenPair{}, err
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, TokenPair{}, err
	}

	account := &Account{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        email,
		PasswordHash: hash,
		BirthDate:    input.BirthDate,
		Gender:       input.Gender,
	}
	// The unique index resolves registration races; Insert returns
	// ErrEmailTaken even when the pre-check above passed.
	if err := s.repo.Insert(ctx, account); err != nil {
		return nil, TokenPair{}, err
	}

	verification, err := s.issuer.IssueVerification(email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	s.sendVerificationMail(ctx, account, verification)

	pair, err := s.issuePair(email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return account, pair, nil
}

// Authenticate checks credentials and issues a token pair. Unknown email and
// wrong password return the identical error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*Account, TokenPair, error) {
	account, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil || !CheckPassword(password, account.PasswordHash) {
		return nil, TokenPair{}, shared.ErrInvalidCredentials
	}
	pair, err := s.issuePair(account.Email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return account, pair, nil
}

// Refresh rotates the token pair for the account named by a refresh token.
func (s *Service) Refresh(ctx context.Context, token string) (*Account, TokenPair, error) {
	account, err := s.ResolveRefresh(ctx, token)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.issuePair(account.Email)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return account, pair, nil
}

// ResolveAccess recovers the account behind an access token. The account
// must exist and be email-verified.
func (s *Service) ResolveAccess(ctx context.Context, token string) (*Account, error) {
	claims, err := DecodeToken(token, s.secret)
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}
	if claims.Purpose != PurposeAccess || claims.Subject == "" {
		return nil, shared.ErrUnauthenticated
	}
	account, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}
	if !account.IsVerified {
		return nil, shared.ErrUnverified
	}
	return account, nil
}

// ResolveRefresh recovers the account behind a refresh token for
// re-issuance. The verified flag is not required here.
func (s *Service) ResolveRefresh(ctx context.Context, token string) (*Account, error) {
	claims, err := DecodeToken(token, s.secret)
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}
	if claims.Purpose != PurposeRefresh || claims.Subject == "" {
		return nil, shared.ErrUnauthenticated
	}
	account, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, shared.ErrUnauthenticated
	}
	return account, nil
}

// VerifyEmail consumes a verification token, flipping the verified flag
// false→true exactly once. A second consumption fails.
func (s *Service) VerifyEmail(ctx context.Context, token string) (*Account, error) {
	claims, err := DecodeToken(token, s.secret)
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	if claims.Purpose != PurposeVerify || claims.Subject == "" {
		return nil, shared.ErrInvalidToken
	}
	account, err := s.repo.FindByEmail(ctx, claims.Subject)
	if err != nil {
		return nil, shared.ErrInvalidToken
	}
	if account.IsVerified {
		return nil, shared.ErrInvalidToken
	}
	account.IsVerified = true
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// UpdateInput carries optional profile changes.
type UpdateInput struct {
	Email  *string
	Gender *string
}

// UpdateProfile applies profile changes. An email change re-enters the
// unverified state. No verification mail is re-sent on this path.
func (s *Service) UpdateProfile(ctx context.Context, account *Account, input UpdateInput) (*Account, error) {
	if input.Email != nil {
		email := NormalizeEmail(*input.Email)
		if email != account.Email {
			if _, err := s.repo.FindByEmail(ctx, email); err == nil {
				return nil, shared.ErrEmailTaken
			} else if !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
			account.Email = email
			account.IsVerified = false
		}
	}
	if input.Gender != nil {
		account.Gender = input.Gender
	}
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ChangePassword verifies the current secret before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, account *Account, current, next string) (*Account, error) {
	if !CheckPassword(current, account.PasswordHash) {
		return nil, shared.ErrWrongPassword
	}
	hash, err := HashPassword(next)
	if err != nil {
		return nil, err
	}
	account.PasswordHash = hash
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Delete removes the account; the store cascades its questions and answers.
func (s *Service) Delete(ctx context.Context, account *Account) error {
	return s.repo.Delete(ctx, account.ID)
}

func (s *Service) issuePair(email string) (TokenPair, error) {
	access, err := s.issuer.IssueAccess(email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.issuer.IssueRefresh(email)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *Service) sendVerificationMail(ctx context.Context, account *Account, token string) {
	if s.mailer == nil {
		return
	}
	link := fmt.Sprintf("%s/auth/verify?token=%s", s.baseURL, token)
	body := fmt.Sprintf(
		"Hello %s!\n\nThanks for registering at AskHub. Please confirm your email by following the link:\n%s\n\nIf you did not register, just ignore this message.\n",
		account.Username, link,
	)
	if err := s.mailer.Send(ctx, account.Email, "Confirm your AskHub registration", body); err != nil {
		s.logger.Warn("enqueue verification mail", slog.String("email", account.Email), slog.Any("error", err))
	}
}
