package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	ai "github.com/spetersoncode/tablebridge"
	"github.com/spetersoncode/tablebridge/agent"
	"github.com/spetersoncode/tablebridge/agui"
	"github.com/spetersoncode/tablebridge/chat"
	"github.com/spetersoncode/tablebridge/executor"
	"github.com/spetersoncode/tablebridge/finder"
	"github.com/spetersoncode/tablebridge/internal/cache"
	"github.com/spetersoncode/tablebridge/internal/metrics"
	"github.com/spetersoncode/tablebridge/internal/provider/anthropic"
	"github.com/spetersoncode/tablebridge/internal/provider/google"
	"github.com/spetersoncode/tablebridge/internal/provider/openai"
	"github.com/spetersoncode/tablebridge/internal/session"
	"github.com/spetersoncode/tablebridge/internal/taskstore"
	"github.com/spetersoncode/tablebridge/restaurant"
	"github.com/spetersoncode/tablebridge/server"
	"github.com/spetersoncode/tablebridge/tool"
)

const shutdownTimeout = 30 * time.Second

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the agent over A2A JSON-RPC and AG-UI",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			if err := cfg.SetAddr(serveAddr); err != nil {
				return err
			}
		}

		logger := newLogger(cfg.Level())
		slog.SetDefault(logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address, overrides HOST and PORT (e.g. :10002)")
}

func serve(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}
	client := chat.New(provider, cfg.ProviderName(),
		chat.WithLogger(logger),
		chat.WithRetryHook(func(p ai.Provider) { m.ProviderRetry(p.String()) }),
	)

	catalog, err := restaurant.Load(cfg.PublicURL())
	if err != nil {
		return err
	}
	registry := tool.NewRegistry().Add(restaurant.Tool(catalog, logger))

	store, err := cache.New(0)
	if err != nil {
		return fmt.Errorf("create cache: %w", err)
	}
	defer store.Close()

	restaurants, err := finder.New(agent.New(client, registry), session.New(store, cfg.SessionTTL),
		finder.WithBaseURL(cfg.PublicURL()),
		finder.WithRunOptions(agent.WithMaxSteps(cfg.MaxSteps)),
		finder.WithUIRetries(cfg.UIRetries),
		finder.WithLogger(logger),
		finder.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("create agent: %w", err)
	}

	exec := executor.New(restaurants,
		executor.WithOutcomeStore(store, cfg.TaskTTL),
		executor.WithStreamTimeout(cfg.StreamTimeout),
		executor.WithLogger(logger),
		executor.WithMetrics(m),
	)
	defer exec.Close()

	srvCfg := server.Config{
		Executor:    exec,
		Tasks:       taskstore.New(store, cfg.TaskTTL),
		Card:        finder.Card(cfg.PublicURL()),
		StaticDir:   cfg.StaticDir,
		CORSOrigins: cfg.CORSOrigins,
		Metrics:     m,
		Gatherer:    reg,
		Logger:      logger,
	}
	if cfg.EnableAGUI {
		srvCfg.AGUI = agui.NewHandler(exec, logger)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      server.New(srvCfg).Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE needs no write timeout
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening",
			"addr", httpServer.Addr,
			"public_url", cfg.PublicURL(),
			"provider", cfg.ProviderName(),
			"tools", registry.Len(),
			"agui", cfg.EnableAGUI,
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newProvider builds the chat backend named by cfg.
func newProvider(ctx context.Context, cfg *Config) (ai.ChatProvider, error) {
	switch cfg.ProviderName() {
	case ai.ProviderOpenRouter:
		return openai.New(cfg.OpenRouterKey,
			openai.WithBaseURL(openRouterBaseURL),
			openai.WithModel(cfg.OpenRouterModel),
			openai.WithHeader("HTTP-Referer", cfg.OpenRouterReferer),
			openai.WithHeader("X-Title", cfg.OpenRouterAppName),
		), nil
	case ai.ProviderOpenAI:
		return openai.New(cfg.OpenAIKey,
			openai.WithBaseURL(cfg.OpenAIBaseURL),
			openai.WithModel(cfg.OpenAIModel),
		), nil
	case ai.ProviderGemini:
		return google.New(ctx, cfg.GeminiKey, google.WithModel(cfg.GeminiModel))
	case ai.ProviderAnthropic:
		return anthropic.New(cfg.AnthropicKey, anthropic.WithModel(cfg.AnthropicModel)), nil
	}
	return nil, fmt.Errorf("unknown provider: %s", cfg.Provider)
}
