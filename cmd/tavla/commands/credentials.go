package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/florianilch/tavla/internal/app"
	"github.com/florianilch/tavla/internal/secretstore"
	"github.com/florianilch/tavla/internal/tokensource"
)

func credentialsCommand() *cli.Command {
	return &cli.Command{
		Name:  "credentials",
		Usage: "manage the API client secret",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "auth--storage",
				Usage: "secret storage (env|file|keyring)",
				Value: string(app.DefaultConfigAuthStorage),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "set",
				Usage:  "store the client secret, read from the terminal or stdin",
				Action: credentialsSetAction,
			},
			{
				Name:   "check",
				Usage:  "exchange the stored credentials for an access token",
				Action: credentialsCheckAction,
			},
		},
	}
}

func credentialsSetAction(ctx context.Context, cmd *cli.Command) error {
	cfg, shutdown, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer flush(shutdown)

	if cfg.Auth.Storage == app.SecretStorageTypeEnv {
		return fmt.Errorf("env storage is read-only, export %s or choose --auth--storage file|keyring", cfg.Auth.EnvKey)
	}

	store, err := cfg.Auth.NewSecretStore()
	if err != nil {
		return fmt.Errorf("opening secret store: %w", err)
	}

	var secret string
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err = promptSecret(os.Stderr, int(os.Stdin.Fd()))
	} else {
		secret, err = readSecret(os.Stdin)
	}
	if err != nil {
		return err
	}

	if err := store.Write(ctx, secret); err != nil {
		if errors.Is(err, secretstore.ErrReadOnly) {
			return fmt.Errorf("%s storage cannot be written: %w", cfg.Auth.Storage, err)
		}
		return fmt.Errorf("storing client secret: %w", err)
	}

	fmt.Fprintf(writer(cmd), "Client secret stored (%s)\n", cfg.Auth.Storage)
	return nil
}

func credentialsCheckAction(ctx context.Context, cmd *cli.Command) error {
	cfg, shutdown, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer flush(shutdown)

	if err := cfg.RequireCredentials(); err != nil {
		return err
	}

	store, err := cfg.Auth.NewSecretStore()
	if err != nil {
		return fmt.Errorf("opening secret store: %w", err)
	}
	secret, err := store.Read(ctx)
	if err != nil {
		return fmt.Errorf("reading client secret: %w", err)
	}

	token, err := tokensource.AcquireToken(ctx, cfg.Auth.ClientID, secret,
		tokensource.WithTokenURL(cfg.Upstream.TokenURL),
		tokensource.WithTimeout(cfg.Upstream.Timeout),
	)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}

	fmt.Fprintf(writer(cmd), "Credentials valid, token expires %s\n", token.Expiry.Local().Format("15:04:05"))
	return nil
}

// promptSecret asks for the secret on a terminal without echoing it.
func promptSecret(prompt io.Writer, fd int) (string, error) {
	fmt.Fprint(prompt, "Client secret: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("reading client secret: %w", err)
	}
	return validSecret(string(b))
}

// readSecret takes the first line of r, e.g. a pipe.
func readSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading client secret: %w", err)
	}
	return validSecret(line)
}

func validSecret(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("client secret cannot be empty")
	}
	return s, nil
}
