package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/zayafka/internal/client"
	"github.com/alfredjeanlab/zayafka/internal/query"
	"github.com/alfredjeanlab/zayafka/internal/session"
	"github.com/alfredjeanlab/zayafka/internal/ui"
)

const defaultProfile = "default"

var loginCmd = &cobra.Command{
	Use:     "login",
	Short:   "Store an admin token for the API",
	GroupID: "session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fullName, _ := cmd.Flags().GetString("full-name")
		email, _ := cmd.Flags().GetString("email")
		noVerify, _ := cmd.Flags().GetBool("no-verify")

		name := profileName
		if name == "" {
			name = defaultProfile
		}
		_, existing, _, err := store.Resolve(name)
		if err != nil {
			return err
		}
		url := resolveAPIURL(cmd, existing.URL)

		token := tokenFlag
		if token == "" {
			token, err = ui.ReadSecret("Token: ", cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
		}
		if token == "" {
			return errors.New("token is required")
		}

		if !noVerify {
			c := client.NewHTTPClient(url, session.NewStatic(token), client.WithTimeout(cfg.Timeout), client.WithLogger(logger))
			if _, err := c.ListRequests(cmd.Context(), query.New().Params()); err != nil {
				if errors.Is(err, client.ErrUnauthenticated) {
					return fmt.Errorf("token rejected by %s", url)
				}
				return fmt.Errorf("verifying token: %w", err)
			}
		}

		admin := existing.Admin
		if fullName != "" {
			admin.FullName = fullName
		}
		if email != "" {
			admin.Email = email
		}
		if err := store.Login(name, session.Profile{
			URL:        url,
			Token:      token,
			Admin:      admin,
			LoggedInAt: time.Now().UTC(),
		}); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s (profile %q)\n", url, admin.DisplayName(), name)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	Short:   "Forget the stored token",
	GroupID: "session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _, ok, err := store.Resolve(profileName)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
			return nil
		}
		if err := store.Logout(name); err != nil {
			return fmt.Errorf("saving session: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged out of profile %q\n", name)
		return nil
	},
}

type whoamiJSON struct {
	Profile    string    `json:"profile"`
	URL        string    `json:"url"`
	FullName   string    `json:"full_name,omitempty"`
	Email      string    `json:"email,omitempty"`
	LoggedIn   bool      `json:"logged_in"`
	LoggedInAt time.Time `json:"logged_in_at,omitzero"`
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Short:   "Show the active admin profile",
	GroupID: "session",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, p, ok, err := store.Resolve(profileName)
		if err != nil {
			return err
		}
		if !ok || p.Token == "" {
			return session.ErrNotLoggedIn
		}
		url := resolveAPIURL(cmd, p.URL)
		out := cmd.OutOrStdout()
		if jsonOutput {
			data, err := json.MarshalIndent(whoamiJSON{
				Profile:    name,
				URL:        url,
				FullName:   p.Admin.FullName,
				Email:      p.Admin.Email,
				LoggedIn:   true,
				LoggedInAt: p.LoggedInAt,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(data))
			return nil
		}
		fmt.Fprintf(out, "Admin:    %s\n", p.Admin.DisplayName())
		if p.Admin.Email != "" {
			fmt.Fprintf(out, "Email:    %s\n", p.Admin.Email)
		}
		fmt.Fprintf(out, "Profile:  %s\n", name)
		fmt.Fprintf(out, "API:      %s\n", url)
		if !p.LoggedInAt.IsZero() {
			fmt.Fprintf(out, "Since:    %s\n", p.LoggedInAt.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(out, "Token:    %s\n", maskToken(p.Token))
		return nil
	},
}

// maskToken shows only the last four characters of a token.
func maskToken(t string) string {
	if len(t) <= 4 {
		return strings.Repeat("*", len(t))
	}
	return strings.Repeat("*", 8) + t[len(t)-4:]
}

func init() {
	loginCmd.Flags().String("full-name", "", "admin name to show in whoami")
	loginCmd.Flags().String("email", "", "admin email, recorded on delete events")
	loginCmd.Flags().Bool("no-verify", false, "store the token without checking it against the API")
}
