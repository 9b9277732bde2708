// Package main is the TripSync terminal client. It keeps trips in a device
// store and mirrors them to the trip server.
package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/atinyakov/TripSync/internal/client/remote"
	"github.com/atinyakov/TripSync/internal/client/shell"
	"github.com/atinyakov/TripSync/internal/client/storage"
	"github.com/atinyakov/TripSync/internal/client/tripsync"
	"github.com/atinyakov/TripSync/internal/config"
	"github.com/atinyakov/TripSync/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version   string
	buildDate string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// session is everything a command needs for one run.
type session struct {
	shell *shell.Shell
	store *storage.LocalStore
	log   *zap.Logger
}

func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.log.Warn("close local store", zap.Error(err))
	}
	_ = s.log.Sync()
}

func openSession(ctx context.Context, opts *config.ClientOptions, in io.Reader, out io.Writer) (*session, error) {
	l := logger.New()
	if err := l.Init(opts.LogLevel); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log := l.Log

	policy, err := tripsync.ParseDeletePolicy(opts.DeletePolicy)
	if err != nil {
		return nil, err
	}

	httpClient, err := remote.NewHTTPClient(opts.CAFile, opts.Timeout)
	if err != nil {
		return nil, err
	}
	rc := remote.New(opts.URL,
		remote.WithHTTPClient(httpClient),
		remote.WithToken(opts.Token),
		remote.WithLogger(log),
	)

	store := storage.NewLocalStore(opts.DBPath, log)
	if err := store.Open(ctx); err != nil {
		return nil, err
	}

	coord := tripsync.New(store, rc,
		tripsync.WithLogger(log),
		tripsync.WithNotifier(shell.Notifier(out)),
		tripsync.WithDeletePolicy(policy),
	)

	return &session{
		shell: shell.New(coord, opts.UserID, in, out, log),
		store: store,
		log:   log,
	}, nil
}

func newRootCmd() *cobra.Command {
	opts := &config.ClientOptions{}

	root := &cobra.Command{
		Use:           "tripsync",
		Short:         "keep a travel journal in sync with the trip server",
		Long:          `tripsync stores trips on this device and mirrors them to the trip server for the configured user.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		// Without a subcommand the interactive shell starts.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, opts)
		},
	}
	opts.BindFlags(root.PersistentFlags())

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "start the interactive shell",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runShell(cmd, opts)
			},
		},
		oneShotCmd(opts, "list", "show the trips stored on this device", "focus"),
		oneShotCmd(opts, "add", "record a new trip", "add"),
		oneShotCmd(opts, "sync", "show the server's trips", "sync"),
		deleteCmd(opts),
		versionCmd(),
	)
	return root
}

func runShell(cmd *cobra.Command, opts *config.ClientOptions) error {
	s, err := openSession(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	defer s.Close()
	return s.shell.Run(cmd.Context())
}

func runOnce(cmd *cobra.Command, opts *config.ClientOptions, yes bool, args ...string) error {
	s, err := openSession(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	defer s.Close()
	s.shell.AssumeYes = yes
	if err := s.shell.Exec(cmd.Context(), args); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

func oneShotCmd(opts *config.ClientOptions, use, short, command string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOnce(cmd, opts, false, command)
		},
	}
}

func deleteCmd(opts *config.ClientOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "delete a trip from this device and the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if id, err := strconv.ParseInt(args[0], 10, 64); err != nil || id <= 0 {
				err := fmt.Errorf("invalid id %q", args[0])
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				return err
			}
			return runOnce(cmd, opts, yes, "delete", args[0])
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Build version: %s\n", cmp.Or(version, "N/A"))
			fmt.Fprintf(cmd.OutOrStdout(), "Build date: %s\n", cmp.Or(buildDate, "N/A"))
		},
	}
}
