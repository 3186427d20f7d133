// Command superuser interactively creates a verified superuser account for
// the admin back-office.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/askhub/askhub/internal/app"
	"github.com/askhub/askhub/internal/auth"
	"github.com/askhub/askhub/internal/platform/db"
	"github.com/askhub/askhub/internal/shared"
)

func main() {
	ctx := context.Background()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		slog.Default().Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	repo := auth.NewRepository(pool)
	reader := bufio.NewReader(os.Stdin)

	var email string
	for {
		email = auth.NormalizeEmail(prompt(reader, "Superuser email: "))
		if !strings.Contains(email, "@") {
			fmt.Println("invalid email address")
			continue
		}
		_, err := repo.FindByEmail(ctx, email)
		if err == nil {
			fmt.Printf("an account with email %s already exists, try another\n", email)
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			slog.Default().Error("lookup email", slog.Any("error", err))
			os.Exit(1)
		}
		break
	}

	var username string
	for {
		username = strings.TrimSpace(prompt(reader, "Username: "))
		if len(username) >= 3 && len(username) <= 50 {
			break
		}
		fmt.Println("username must be 3-50 characters")
	}

	var password string
	for {
		password = strings.TrimSpace(prompt(reader, "Password (min 8 chars): "))
		confirm := strings.TrimSpace(prompt(reader, "Confirm password: "))
		if len(password) < 8 {
			fmt.Println("password must be at least 8 characters")
			continue
		}
		if password != confirm {
			fmt.Println("passwords do not match")
			continue
		}
		break
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		slog.Default().Error("hash password", slog.Any("error", err))
		os.Exit(1)
	}

	account := &auth.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		IsSuperuser:  true,
		IsVerified:   true,
	}
	if err := repo.Insert(ctx, account); err != nil {
		slog.Default().Error("insert superuser", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Printf("superuser %s created\n", email)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}
