// Package main is the resonance command line client. It scores JSON requests
// through a running worker, or locally with --local, and reads the score ledger.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/thebtf/resonance/pkg/client"
)

var Version = "dev"

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errUsage marks input the CLI cannot act on.
var errUsage = errors.New("invalid input")

// cli carries the streams and flags shared by every command.
type cli struct {
	stdin    io.Reader
	stdout   io.Writer
	logLevel string

	// newClient builds the worker client; tests point it at a fake worker.
	newClient func() *client.Client
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: stderr}).With().Timestamp().Logger()

	c := &cli{
		stdin:  stdin,
		stdout: stdout,
		newClient: func() *client.Client {
			return client.NewFromEnv()
		},
	}
	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("resonance failed")
		if errors.Is(err, errUsage) {
			return exitUsage
		}
		return exitFailure
	}
	return exitOK
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "resonance",
		Short:         "Score resonance requests",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(c.logLevel)
			if err != nil || level == zerolog.NoLevel {
				return fmt.Errorf("%w: log level %q", errUsage, c.logLevel)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "log level written to stderr")
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", errUsage, err)
	})

	root.AddCommand(
		c.scoreCmd(),
		c.recentCmd(),
		c.statsCmd(),
		c.versionCmd(),
	)
	return root
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI and worker versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := map[string]string{"cli": Version}
			if v, err := c.newClient().Version(cmd.Context()); err == nil {
				out["worker"] = v
			} else {
				log.Debug().Err(err).Msg("Worker version unavailable")
			}
			return c.writeJSON(out)
		},
	}
}

func (c *cli) writeJSON(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
