package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/loomui-dev/loom/internal/config"
	"github.com/loomui-dev/loom/pkg/bind"
	"github.com/loomui-dev/loom/pkg/live"
	"github.com/loomui-dev/loom/pkg/loom"
	"github.com/loomui-dev/loom/pkg/protocol"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		port       int
		host       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the live server",
		Long: `Start the live server with the built-in demo UI.

Examples:
  loom serve
  loom serve --port=8080
  loom serve --config=./loom.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath, port, host)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to loom.yaml")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from loom.yaml)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from loom.yaml)")

	return cmd
}

func runServe(configPath string, port int, host string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Port = port
	}
	if host != "" {
		cfg.Host = host
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	srv := live.NewServer(cfg, logger, counterApp)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting", "name", cfg.Name, "addr", cfg.Addr())
	return srv.ListenAndServe(ctx)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// counterApp is the demo UI served until the project grows its own.
func counterApp(s *live.Session) {
	doc := s.Document()
	count := loom.NewOn(s.Scheduler(), 0)
	s.OnClose(loom.Observe(count, "cell", "demo counter"))

	card := doc.Element("div")
	card.AddClass("counter")

	label := doc.Text("")
	p := doc.Element("p")
	p.AppendChild(label)
	card.AppendChild(p)

	dec := doc.Element("button")
	dec.SetAttribute("data-event", "decrement")
	dec.AppendChild(doc.Text("-"))
	card.AppendChild(dec)

	inc := doc.Element("button")
	inc.SetAttribute("data-event", "increment")
	inc.AppendChild(doc.Text("+"))
	card.AppendChild(inc)

	doc.Root().AppendChild(card)

	bind.Text(label, count, func(v any) string {
		return fmt.Sprintf("count: %v", v)
	})
	bind.Class(card, loom.Map(count, func(n int) string {
		if n < 0 {
			return "counter negative"
		}
		return "counter"
	}))

	s.Handle("increment", func(protocol.Event) {
		count.Update(func(n int) int { return n + 1 })
	})
	s.Handle("decrement", func(protocol.Event) {
		count.Update(func(n int) int { return n - 1 })
	})
}
