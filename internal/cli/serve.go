package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	bmerrors "github.com/matzehuels/buildingmap/pkg/errors"
	"github.com/matzehuels/buildingmap/pkg/save"
	"github.com/matzehuels/buildingmap/pkg/server"
)

// serveCommand serves a live scene over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve <input>",
		Short: "Serve a map for editing and saving over HTTP",
		Long: `Load a map into a live scene and serve it over HTTP. Edits go through
the /levels endpoints; POST /save queues a save and GET /save/{id} reports
its outcome. Save requests that arrive while a pass is pending replace each
other, so only the latest location is written. Documents saved to mem://
locations are served under /saved.`,
		Example: `  buildingmap serve office.building.yaml --addr :8080
  curl -X POST localhost:8080/save -d '{"location":"office.building.yaml"}'
  curl -X POST localhost:8080/save -d '{"location":"mem://office.json"}'`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeMapFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd, args[0], addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")
	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, input, addr string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	logger := loggerFromContext(ctx)

	s, m, err := loadScene(input)
	if err != nil {
		return err
	}
	router, mem, closeRouter, err := c.newRouter(ctx)
	if err != nil {
		return err
	}
	defer closeRouter()

	sched := save.NewScheduler(s, save.NewSaver(router, logger))
	sched.OnReport = func(r save.Report) {
		if r.Err != nil {
			printError("save %s failed: %s", r.Request.Location, bmerrors.UserMessage(r.Err))
			return
		}
		printSuccess("Saved %s %s", StyleValue.Render(r.Outcome.Location), StyleDim.Render(r.Request.ID.String()))
	}

	printInfo("Serving %s (%d levels) on %s", StyleValue.Render(m.Name), len(m.Levels), StyleValue.Render(addr))

	runErr := make(chan error, 1)
	go func() { runErr <- sched.Run(ctx) }()

	srv := server.New(sched, server.Options{Logger: logger, Sinks: router, Memory: mem})
	err = srv.ListenAndServe(ctx, addr, c.Config.ShutdownTimeout())
	cancel()
	<-runErr
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
