package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/zayafka/internal/client"
	"github.com/alfredjeanlab/zayafka/internal/config"
	"github.com/alfredjeanlab/zayafka/internal/session"
	"github.com/alfredjeanlab/zayafka/internal/ui"
)

var (
	apiURL      string
	profileName string
	tokenFlag   string
	sessionFile string
	jsonOutput  bool
	verbose     bool

	cfg    *config.Config
	logger *slog.Logger
	store  *session.Store
)

var rootCmd = &cobra.Command{
	Use:           "zd <command>",
	Short:         "Admin client for clinic appointment requests",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}

		path := sessionFile
		if path == "" {
			if path, err = session.DefaultPath(); err != nil {
				return err
			}
		}
		store = session.NewStore(path)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides $ZAYAFKA_API_URL and the profile URL)")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "session profile to use (default: the active one)")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "bearer token to use instead of the stored session")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "session file path (default ~/.local/state/zayafka/session.toml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")

	rootCmd.AddGroup(
		&cobra.Group{ID: "requests", Title: "Requests:"},
		&cobra.Group{ID: "views", Title: "Views:"},
		&cobra.Group{ID: "session", Title: "Session:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Requests
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reportCmd)

	// Views
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(watchCmd)

	// Session
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

// openSession returns the session commands authenticate with and the URL
// stored in its profile, if any.
func openSession() (session.Session, string, error) {
	if tokenFlag != "" {
		return session.NewStatic(tokenFlag), "", nil
	}
	fs, err := session.Open(store, profileName, logger)
	if err != nil {
		return nil, "", fmt.Errorf("reading session: %w", err)
	}
	return fs, fs.Profile().URL, nil
}

// resolveAPIURL picks the base URL: --api-url, then an explicit
// $ZAYAFKA_API_URL, then the profile's URL, then the built-in default.
func resolveAPIURL(cmd *cobra.Command, profileURL string) string {
	if cmd.Flags().Changed("api-url") && apiURL != "" {
		return apiURL
	}
	if cfg.APIURLSet {
		return cfg.APIURL
	}
	if profileURL != "" {
		return profileURL
	}
	return cfg.APIURL
}

// newClient builds an API client for a logged-in session. It fails with
// session.ErrNotLoggedIn before any request is made when there is no token.
func newClient(cmd *cobra.Command) (*client.HTTPClient, error) {
	sess, profileURL, err := openSession()
	if err != nil {
		return nil, err
	}
	if err := session.Require(sess); err != nil {
		return nil, err
	}
	base := resolveAPIURL(cmd, profileURL)
	logger.Debug("api_client", slog.String("url", base))
	return client.NewHTTPClient(base, sess,
		client.WithTimeout(cfg.Timeout),
		client.WithLogger(logger),
	), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status: 2 for usage and
// session problems, 1 otherwise.
func exitCode(err error) int {
	if errors.Is(err, session.ErrNotLoggedIn) || client.Classify(err) == client.KindUnauthenticated {
		return 2
	}
	return 1
}
