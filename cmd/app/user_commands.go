package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/allisson/filedrop/cmd/app/commands"
	"github.com/allisson/filedrop/internal/app"
	"github.com/allisson/filedrop/internal/config"
)

func getUserCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Register an account without going through the signup endpoint",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "email",
					Aliases:  []string{"e"},
					Required: true,
					Usage:    "Account email",
				},
				&cli.StringFlag{
					Name:    "password",
					Aliases: []string{"p"},
					Usage:   "Account password (omit to be prompted)",
					Sources: cli.EnvVars("FILEDROP_USER_PASSWORD"),
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer commands.CloseContainer(container, container.Logger())

				users, err := container.UserUseCase()
				if err != nil {
					return fmt.Errorf("failed to initialize user use case: %w", err)
				}

				return commands.RunCreateUser(
					ctx,
					users,
					container.Logger(),
					cmd.String("email"),
					cmd.String("password"),
					commands.DefaultIO(),
				)
			},
		},
	}
}
