// Command pycrucible-runner is the embedded runtime half of a pycrucible
// bundle. It is never invoked directly by a user; its bytes are copied
// into the packer's runnerbin package and appended to every bundle the
// packer produces.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/datawire/dlib/dlog"
	"github.com/sirupsen/logrus"

	"github.com/razorblade23/pycrucible/pkg/rundriver"
)

func main() {
	// The runner takes no flags of its own (everything after the binary
	// name is forwarded to the entry point), so debug-mode can't be read
	// off os.Args the way the packer reads --debug. It starts out at Info
	// level; rundriver.Run elevates it to Debug once it has loaded the
	// bundled configuration and knows whether debug mode was requested.
	logrusLogger := logrus.New()
	logrusLogger.SetLevel(logrus.InfoLevel)
	ctx := dlog.WithLogger(context.Background(), dlog.WrapLogrus(logrusLogger))

	if err := rundriver.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "pycrucible: error: %v\n", err)
		os.Exit(1)
	}
}
