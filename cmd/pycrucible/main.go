// Command pycrucible packs a Python project and the uv package manager
// into a single self-contained native executable.
package main

import (
	"context"
	"os"

	"github.com/datawire/dlib/dlog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/razorblade23/pycrucible/pkg/cliutil"
	"github.com/razorblade23/pycrucible/pkg/runnerbin"
)

var argparser = &cobra.Command{
	Use:   "pycrucible {[flags]|SUBCOMMAND...}",
	Short: "Pack a Python project and uv into a single executable",

	Args: cliutil.OnlySubcommands,
	RunE: cliutil.RunSubcommands,

	SilenceErrors: true, // main() will handle this after .ExecuteContext() returns
	SilenceUsage:  true, // our FlagErrorFunc will handle it
}

func init() {
	argparser.SetFlagErrorFunc(cliutil.FlagErrorFunc)
	argparser.SetHelpTemplate(cliutil.HelpTemplate)
}

func main() {
	logrusLogger := logrus.New()
	logrusLogger.SetLevel(logrus.InfoLevel)
	for _, arg := range os.Args[1:] {
		if arg == "--debug" {
			logrusLogger.SetLevel(logrus.DebugLevel)
		}
	}
	ctx := dlog.WithLogger(context.Background(), dlog.WrapLogrus(logrusLogger))

	if len(runnerbin.Bin) == 0 {
		printFailure(os.Stderr, "no runner binary is embedded; run `make runner-bin` before building pycrucible")
		os.Exit(1)
	}

	if err := argparser.ExecuteContext(ctx); err != nil {
		printFailure(argparser.ErrOrStderr(), "%v", err)
		os.Exit(1)
	}
}
