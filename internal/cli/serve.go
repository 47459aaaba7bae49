package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/geoset/internal/server"
	"github.com/matzehuels/geoset/pkg/backend"
	"github.com/matzehuels/geoset/pkg/metrics"
)

type serveOpts struct {
	addr        string
	maxSessions int
	sessionTTL  time.Duration
	output      string
	sink        string
	noCache     bool
	noMetrics   bool
}

// serveCommand creates the serve command, which runs the HTTP API until
// interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		Long: `Serve dashboard sessions over HTTP. The server also answers
POST /api/generate, so other geoset instances can use it as their http
export backend.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config)")
	cmd.Flags().IntVar(&opts.maxSessions, "max-sessions", 0, "maximum live sessions (default from config)")
	cmd.Flags().DurationVar(&opts.sessionTTL, "session-ttl", 0, "idle session lifetime (default from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "export directory or mongodb:// URI (default from config)")
	cmd.Flags().StringVar(&opts.sink, "sink", "", "bundle sink: dir, mongo (default from config)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.noMetrics, "no-metrics", false, "disable /metrics")
	_ = cmd.RegisterFlagCompletionFunc("sink", fixedCompletion("dir", "mongo"))

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg := c.Config.Server
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.maxSessions > 0 {
		cfg.MaxSessions = opts.maxSessions
	}
	if opts.sessionTTL > 0 {
		cfg.SessionTTL = opts.sessionTTL
	}

	dopts, err := c.editorOptions()
	if err != nil {
		return err
	}

	var reg *metrics.Registry
	if !opts.noMetrics {
		reg = metrics.DefaultRegistry()
		reg.Register()
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	s, err := c.newSink(ctx, opts.sink, firstNonEmpty(opts.output, c.Config.Export.OutputDir))
	if err != nil {
		return fmt.Errorf("open sink: %w", err)
	}
	defer func() {
		if err := s.Close(context.Background()); err != nil {
			c.Logger.Warn("close sink", "error", err)
		}
	}()

	local := backend.NewLocal(runner, s, c.Logger)
	local.Options.Prefix = c.Config.Export.Prefix

	srv := server.New(server.Options{
		Addr:            cfg.Addr,
		MaxSessions:     cfg.MaxSessions,
		SessionTTL:      cfg.SessionTTL,
		EdgePolicy:      dopts.EdgePolicy,
		DuplicatePolicy: dopts.DuplicatePolicy,
		Runner:          runner,
		Backend:         local,
		Metrics:         reg,
		Logger:          c.Logger,
	})

	fmt.Fprintln(out, StyleTitle.Render("geoset server"))
	printKeyValue("Address", cfg.Addr)
	printKeyValue("Sessions", strconv.Itoa(cfg.MaxSessions)+" max, "+cfg.SessionTTL.String()+" idle")
	printKeyValue("Cache", c.Config.Cache.Backend)
	if reg != nil {
		printKeyValue("Metrics", "/metrics")
	}
	fmt.Fprintln(out)

	return srv.Run(ctx)
}
