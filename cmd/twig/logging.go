package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/odvcencio/twig/pkg/repo"
)

const defaultLogLevel = zerolog.WarnLevel

type logOptions struct {
	verbose bool
	level   string
}

// explicit reports whether the command line chose a level, which then wins
// over the repository config.
func (o *logOptions) explicit() bool {
	return o.verbose || o.level != ""
}

// setup points the global logger at w with a console format.
func (o *logOptions) setup(w io.Writer) error {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).
		With().Timestamp().Logger()

	level := defaultLogLevel
	switch {
	case o.verbose:
		level = zerolog.DebugLevel
	case o.level != "":
		parsed, err := zerolog.ParseLevel(o.level)
		if err != nil {
			return fmt.Errorf("invalid --log-level %q: %w", o.level, err)
		}
		level = parsed
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

// openRepo opens the repository containing the working directory and, unless
// the command line set a log level, applies the level from its config.
func openRepo(cmd *cobra.Command) (*repo.Repo, error) {
	r, err := repo.Open(".")
	if err != nil {
		return nil, err
	}

	root := cmd.Root()
	verbose, _ := root.PersistentFlags().GetBool("verbose")
	level, _ := root.PersistentFlags().GetString("log-level")
	opts := logOptions{verbose: verbose, level: level}
	if !opts.explicit() && r.Config.Log.Level != "" {
		parsed, err := zerolog.ParseLevel(r.Config.Log.Level)
		if err != nil {
			log.Warn().Str("level", r.Config.Log.Level).Msg("ignoring invalid log.level in config")
		} else {
			zerolog.SetGlobalLevel(parsed)
		}
	}
	return r, nil
}
