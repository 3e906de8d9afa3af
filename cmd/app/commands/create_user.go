package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"

	userUseCase "github.com/allisson/filedrop/internal/user/usecase"
)

// RunCreateUser registers an account from the command line. When password is
// empty it is prompted for twice and must match.
func RunCreateUser(
	ctx context.Context,
	users userUseCase.UseCase,
	logger *slog.Logger,
	email string,
	password string,
	io IOTuple,
) error {
	if password == "" {
		reader := bufio.NewReader(io.Reader)

		first, err := readSecret(io, reader, "Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		second, err := readSecret(io, reader, "Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read password confirmation: %w", err)
		}
		if first != second {
			return fmt.Errorf("passwords do not match")
		}
		password = first
	}

	user, err := users.RegisterUser(ctx, userUseCase.RegisterUserInput{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	_, _ = fmt.Fprintf(io.Writer, "User created\nID:    %s\nEmail: %s\n", user.ID, user.Email)
	logger.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}
