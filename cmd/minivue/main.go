package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/delaneyj/minivue/internal/logging"
	"github.com/urfave/cli/v3"
)

const (
	documentKey = "document"
	debounceKey = "debounce"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "minivue",
		Usage: "Mount reactive templates and render them",
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "Mount, apply --set and --fire, then print the html",
				Flags: append(appFlags(), &cli.BoolFlag{
					Name:  documentKey,
					Usage: "print the whole document instead of the mount element",
				}),
				Action: render,
			},
			{
				Name:   "inspect",
				Usage:  "List the reactive sites the compiler created",
				Flags:  appFlags(),
				Action: inspect,
			},
			{
				Name:  "watch",
				Usage: "Re-render whenever the data file changes",
				Flags: append(appFlags(),
					&cli.BoolFlag{
						Name:  documentKey,
						Usage: "print the whole document instead of the mount element",
					},
					&cli.DurationFlag{
						Name:  debounceKey,
						Usage: "ignore changes closer together than this",
						Value: defaultDebounce,
					},
				),
				Action: watch,
			},
		},
	}
	if err := cmd.Run(ctx, os.Args); err != nil {
		logging.NewLogger("cli").Fatal(err)
	}
}
