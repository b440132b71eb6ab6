package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	ghauth "github.com/giantswarm/ghe-auth"
)

// EnvPassword supplies the password for non-interactive use.
const EnvPassword = "GHE_AUTH_PASSWORD"

func newTokenCmd(opts *options) *cobra.Command {
	var username, otpFlag string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Create an authorization and print its token",
		Long: `Create an authorization on the GitHub Enterprise host with HTTP Basic
credentials and print the token. The password is read from ` + EnvPassword + `
or prompted for without echo. Accounts with two-factor authentication pass
--otp or set ` + EnvOTPSecret + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, inst, err := opts.authenticator()
			if err != nil {
				return err
			}
			defer func() { _ = inst.Shutdown(context.Background()) }()

			password, err := readPassword(cmd, username)
			if err != nil {
				return err
			}

			otp, err := resolveOTP(otpFlag, time.Now())
			if err != nil {
				return err
			}

			token, err := auth.GetAuthorizationTokenWithOTP(cmd.Context(), username, password, otp)
			if err != nil {
				return describeFailure(err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "GitHub Enterprise username")
	_ = cmd.MarkFlagRequired("user")
	addOTPFlag(cmd, &otpFlag)
	return cmd
}

func newLoginCmd(opts *options) *cobra.Command {
	var username, otpFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate like a registry login and print the result as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, inst, err := opts.authenticator()
			if err != nil {
				return err
			}
			defer func() { _ = inst.Shutdown(context.Background()) }()

			password, err := readPassword(cmd, username)
			if err != nil {
				return err
			}

			otp, err := resolveOTP(otpFlag, time.Now())
			if err != nil {
				return err
			}

			var (
				result *ghauth.AuthenticatedUser
				failed error
			)
			auth.Authenticate(cmd.Context(), &ghauth.Request{
				Body: &ghauth.Credentials{Name: username, Password: password, OTP: otp},
			}, func(err error, user *ghauth.AuthenticatedUser) {
				result, failed = user, err
			})
			if failed != nil {
				return describeFailure(failed)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "GitHub Enterprise username")
	addOTPFlag(cmd, &otpFlag)
	return cmd
}

func newPingCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the GitHub Enterprise API is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			auth, inst, err := opts.authenticator()
			if err != nil {
				return err
			}
			defer func() { _ = inst.Shutdown(context.Background()) }()

			if err := auth.HealthCheck(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s is reachable\n", opts.cfg.Host)
			return err
		},
	}
}

// describeFailure turns an authentication error into a one-line CLI error.
func describeFailure(err error) error {
	authErr, ok := ghauth.AsAuthError(err)
	if !ok {
		return err
	}
	if authErr.Code != 0 {
		return fmt.Errorf("%s (HTTP %d)", authErr.Message, authErr.Code)
	}
	if cause := errors.Unwrap(authErr); cause != nil && authErr.Kind != ghauth.KindValidation {
		return fmt.Errorf("%s: %w", authErr.Message, cause)
	}
	return errors.New(authErr.Message)
}

// readPassword returns the password from the environment or prompts for it.
// Input is not echoed when stdin is a terminal. An empty result is returned
// as is and rejected by the authenticator.
func readPassword(cmd *cobra.Command, username string) (string, error) {
	if password, ok := os.LookupEnv(EnvPassword); ok {
		return password, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Password for %s: ", username)
		b, err := term.ReadPassword(int(f.Fd()))
		_, _ = fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	// Not a terminal, read one line (for piped input)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
