package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	// Compiled-in backend drivers register themselves on import; which
	// ones are real depends on the build tags.
	_ "github.com/samcharles93/accel/pkg/accel/cuda"
	_ "github.com/samcharles93/accel/pkg/accel/metal"
)

func main() {
	app := &cli.Command{
		Name:  "accel",
		Usage: "Accelerator runtime inspection and control",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			infoCmd(),
			devicesCmd(),
			syncCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
