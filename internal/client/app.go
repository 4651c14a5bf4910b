package client

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/MKhiriev/go-identity-keeper/internal/adapter"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
	"github.com/MKhiriev/go-identity-keeper/models"
)

type command struct {
	usage string
	// args is the exact number of operands, or the minimum when variadic.
	args     int
	variadic bool
	run      func(ctx context.Context, a *App, args []string) (any, error)
}

var commands = map[string]command{
	"signup": {
		usage: "signup <username> <email> <password> [name]", args: 3, variadic: true,
		run: func(ctx context.Context, a *App, args []string) (any, error) {
			req := models.SignupRequest{Username: args[0], Email: args[1], Password: args[2]}
			if len(args) > 3 {
				req.Name = strings.Join(args[3:], " ")
			}
			return a.server.Signup(ctx, req)
		},
	},
	"login": {
		usage: "login <username|email> <password>", args: 2,
		run: func(ctx context.Context, a *App, args []string) (any, error) {
			return a.server.Login(ctx, models.LoginRequest{Username: args[0], Password: args[1]})
		},
	},
	"refresh": {
		usage: "refresh <token>", args: 1,
		run: func(ctx context.Context, a *App, args []string) (any, error) {
			a.server.SetToken(args[0])
			return a.server.RefreshToken(ctx)
		},
	},
	"change-password": {
		usage: "change-password <token> <old-password> <new-password>", args: 3,
		run: func(ctx context.Context, a *App, args []string) (any, error) {
			a.server.SetToken(args[0])
			err := a.server.ChangePassword(ctx, models.ChangePasswordRequest{OldPassword: args[1], Password: args[2]})
			return models.Ack{Message: "password changed"}, err
		},
	},
	"reset-password": {
		usage: "reset-password <username|email>", args: 1,
		run: func(ctx context.Context, a *App, args []string) (any, error) {
			return a.server.ResetPassword(ctx, models.ResetPasswordRequest{UsernameOrEmail: args[0]})
		},
	},
	"recover-password": {
		usage: "recover-password <recovery-token> <new-password>", args: 2,
		run: func(ctx context.Context, a *App, args []string) (any, error) {
			err := a.server.RecoverPassword(ctx, models.RecoverPasswordRequest{Token: args[0], Password: args[1]})
			return models.Ack{Message: "password recovered"}, err
		},
	},
	"me": {
		usage: "me <token>", args: 1,
		run: func(ctx context.Context, a *App, args []string) (any, error) {
			a.server.SetToken(args[0])
			return a.server.Profile(ctx)
		},
	},
	"update-me": {
		usage: "update-me <token> [-username name] [-name display-name]", args: 1, variadic: true,
		run: runUpdateProfile,
	},
	"user": {
		usage: "user <token> <user-id>", args: 2,
		run: func(ctx context.Context, a *App, args []string) (any, error) {
			a.server.SetToken(args[0])
			return a.server.FindUser(ctx, args[1])
		},
	},
	"version": {
		usage: "version", args: 0,
		run: func(ctx context.Context, a *App, _ []string) (any, error) {
			version, err := a.server.Version(ctx)
			return map[string]string{"version": version}, err
		},
	},
}

func runUpdateProfile(ctx context.Context, a *App, args []string) (any, error) {
	fs := flag.NewFlagSet("update-me", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("username", "", "new username")
	name := fs.String("name", "", "new display name")
	if err := fs.Parse(args[1:]); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}

	a.server.SetToken(args[0])
	return a.server.UpdateProfile(ctx, models.UpdateProfileRequest{Username: *username, Name: *name})
}

// App runs one client command against the identity server.
type App struct {
	server adapter.ServerAdapter
	out    io.Writer

	logger *logger.Logger
}

func NewApp(server adapter.ServerAdapter, out io.Writer, logger *logger.Logger) *App {
	return &App{server: server, out: out, logger: logger}
}

// Run executes args[0] with the remaining operands and prints the result.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: expected a command\n%s", ErrUsage, Usage())
	}

	name, operands := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w %q\n%s", ErrUnknownCommand, name, Usage())
	}
	if len(operands) < cmd.args || (!cmd.variadic && len(operands) != cmd.args) {
		return fmt.Errorf("%w, usage: %s", ErrUsage, cmd.usage)
	}

	a.logger.Debug().Str("command", name).Msg("running client command")

	result, err := cmd.run(ctx, a, operands)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	encoder := json.NewEncoder(a.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// Usage lists every command.
func Usage() string {
	lines := make([]string, 0, len(commands))
	for _, cmd := range commands {
		lines = append(lines, "  "+cmd.usage)
	}
	sort.Strings(lines)

	return "commands:\n" + strings.Join(lines, "\n")
}
