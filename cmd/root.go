package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/denisAlshanov/streamgrab/internal/config"
	"github.com/denisAlshanov/streamgrab/internal/utils"
)

// Version is set at build time via ldflags.
var Version = "dev"

// app carries state shared by subcommands once configuration is loaded.
type app struct {
	cfg       *config.Config
	logCloser io.Closer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:               "streamgrab",
		Short:             "Resolve direct media stream URLs over HTTP",
		Version:           Version,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
		PersistentPostRun: a.close,
		RunE:              a.serve,
	}

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newProbeCmd(a))
	return root
}

// load reads and validates configuration and applies the logging setup.
func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	closer, err := utils.ConfigureLogger(cfg.Log.Level, cfg.Log.File, logConsole(cmd))
	if err != nil {
		return fmt.Errorf("configuring logger: %w", err)
	}

	a.cfg = cfg
	a.logCloser = closer
	return nil
}

// stdoutResultsAnnotation marks commands that print their result on stdout;
// their logs go to stderr instead.
const stdoutResultsAnnotation = "stdout-results"

func logConsole(cmd *cobra.Command) io.Writer {
	if _, ok := cmd.Annotations[stdoutResultsAnnotation]; ok {
		return cmd.ErrOrStderr()
	}
	return os.Stdout
}

func (a *app) close(cmd *cobra.Command, args []string) {
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}
