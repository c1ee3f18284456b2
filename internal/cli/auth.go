// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/lexora-tui/internal/api"
	"github.com/jeranaias/lexora-tui/internal/session"
)

var (
	authEmail    string
	authUsername string
	authPassword string
)

var signinCmd = &cobra.Command{
	Use:   "signin",
	Short: "Sign in to the auth service",
	Long: `Sign in and store the session locally.

Missing values are prompted for; the password is read without echo. The
token is sealed before it is written to ~/.lexora/lexora.db.

Examples:
  lexora signin
  lexora signin --email advocate@example.com`,
	Args: cobra.NoArgs,
	RunE: runSignin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	Args:  cobra.NoArgs,
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored session",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	for _, c := range []*cobra.Command{signinCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "password (prompted when omitted)")
	}
	signupCmd.Flags().StringVar(&authUsername, "username", "", "display name")
}

// userInfo is the --json data of the auth commands.
type userInfo struct {
	SignedIn bool     `json:"signed_in"`
	Name     string   `json:"name,omitempty"`
	Email    string   `json:"email,omitempty"`
	User     api.User `json:"user,omitempty"`
}

func newUserInfo(sess session.Session) userInfo {
	return userInfo{
		SignedIn: true,
		Name:     sess.User.DisplayName(),
		Email:    sess.User.Email(),
		User:     sess.User,
	}
}

// prompted returns value, or asks for it when empty.
func prompted(cmd *cobra.Command, value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return readLine(cmd.ErrOrStderr(), label+": ")
}

func promptedSecret(cmd *cobra.Command, value, label string) (string, error) {
	if value != "" {
		return value, nil
	}
	return readPassword(cmd.ErrOrStderr(), label+": ")
}

func runSignin(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	email, err := prompted(cmd, authEmail, "Email")
	if err != nil {
		return err
	}
	password, err := promptedSecret(cmd, authPassword, "Password")
	if err != nil {
		return err
	}

	sess, err := sessions.Establish(ctx, func(ctx context.Context) (*api.AuthResponse, error) {
		return client.Signin(ctx, api.SigninRequest{Email: email, Password: password})
	})
	if err != nil {
		return err
	}
	return reportSignedIn(cmd, sess, "Signed in as ")
}

func runSignup(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	username, err := prompted(cmd, authUsername, "Username")
	if err != nil {
		return err
	}
	email, err := prompted(cmd, authEmail, "Email")
	if err != nil {
		return err
	}
	password, err := promptedSecret(cmd, authPassword, "Password")
	if err != nil {
		return err
	}
	confirm := password
	if authPassword == "" {
		if confirm, err = readPassword(cmd.ErrOrStderr(), "Confirm password: "); err != nil {
			return err
		}
	}

	sess, err := sessions.Establish(ctx, func(ctx context.Context) (*api.AuthResponse, error) {
		return client.Signup(ctx, api.SignupRequest{
			Username:        username,
			Email:           email,
			Password:        password,
			ConfirmPassword: confirm,
		})
	})
	if err != nil {
		return err
	}
	return reportSignedIn(cmd, sess, "Account created. Signed in as ")
}

func reportSignedIn(cmd *cobra.Command, sess session.Session, prefix string) error {
	if jsonOutput {
		return printJSON(cmd, newUserInfo(sess))
	}
	name := sess.User.DisplayName()
	if name == "" {
		name = "unnamed user"
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSuccess(prefix+name))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := sessions.Clear(commandContext(cmd)); err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(cmd, userInfo{SignedIn: false})
	}
	fmt.Fprintln(cmd.OutOrStdout(), RenderSuccess("Signed out"))
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	sess, err := sessions.Load(commandContext(cmd))
	if errors.Is(err, session.ErrNoSession) {
		return errSignedOut
	}
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd, newUserInfo(sess))
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, RenderField("Name", sess.User.DisplayName()))
	if email := sess.User.Email(); email != "" {
		fmt.Fprintln(out, RenderField("Email", email))
	}
	fmt.Fprintln(out, RenderField("Auth service", cfg.API.AuthURL))
	return nil
}
