package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Set by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	flagUser    string
	flagHost    string
	flagRemote  string
	flagGit     string
	flagQuiet   bool
	flagVerbose int
)

func main() {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nomad",
	Short: "Synchronize work-in-progress branches across machines",
	Long: `git-nomad publishes your local branches under a per-user, per-host ref
namespace on a shared remote, and mirrors every host's published branches
back into each clone, so work-in-progress never depends on a single
machine being reachable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagUser, "user", "", "identity to publish under (default: OS user)")
	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "host name to publish under (default: hostname)")
	rootCmd.PersistentFlags().StringVarP(&flagRemote, "remote", "R", "", "remote to synchronize with (default: origin)")
	rootCmd.PersistentFlags().StringVar(&flagGit, "git", "", "path to the git binary (default: git on $PATH)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress progress output")
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase log verbosity (-v, -vv)")

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(completionsCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("nomad %s\n", version)
		cmd.Printf("  commit: %s\n", commit)
		cmd.Printf("  built:  %s\n", date)
	},
}

// setupLogger builds a slog.Logger gated by -v/-vv/--quiet: --quiet drops
// everything but errors, the default level is warn, -v is info, -vv is
// debug.
func setupLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case flagQuiet:
		level = slog.LevelError
	case flagVerbose >= 2:
		level = slog.LevelDebug
	case flagVerbose == 1:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

func setupSignalHandler() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	return ctx, cancel
}
