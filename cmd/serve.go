package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/auth"
	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/dashboard"
	"github.com/abhisek/adaptiq/internal/evaluate"
	"github.com/abhisek/adaptiq/internal/followup"
	"github.com/abhisek/adaptiq/internal/learning"
	"github.com/abhisek/adaptiq/internal/llm"
	"github.com/abhisek/adaptiq/internal/questions"
	"github.com/abhisek/adaptiq/internal/server"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides ADAPTIQ_ADDR)")
}

// runServer opens the store, builds dependencies, and serves HTTP until
// interrupted.
func runServer(cmd *cobra.Command) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.ListenAddr = addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	deps := learning.Deps{
		Subjects:   st.Subjects(),
		Questions:  st.Questions(),
		Answers:    st.Answers(),
		DedupLimit: cfg.DedupLimit,
		Logger:     logger,
	}

	var provider llm.Provider
	if cfg.LLMEnabled {
		provider, err = llm.NewProvider(ctx, cfg.LLM, st.EventRepo())
		if err != nil {
			return fmt.Errorf("llm provider: %w", err)
		}
		deps.Source = questions.New(provider, questions.DefaultConfig())
		deps.Evaluator = evaluate.New(provider, logger)
		deps.FollowUp = followup.NewLLM(provider)
		logger.Info("llm provider configured", "provider", llm.ProviderName, "model", provider.ModelID())
	} else {
		logger.Warn("no LLM credential configured, serving mock questions")
	}

	tokens, err := auth.NewTokens(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	opts := server.Options{
		Version:        version,
		CookieSecure:   cfg.CookieSecure,
		AllowedOrigins: cfg.AllowedOrigins,
		RateLimit:      cfg.RateLimit,
		AccessLog:      os.Stdout,
	}
	if cfg.RedisURL != "" {
		rs, err := server.NewRedisStorage(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rs.Close()
		opts.LimiterStorage = rs
		logger.Info("rate limit counters stored in redis")
	}

	srv := server.New(opts, server.Deps{
		Accounts:  auth.NewAccounts(st.Users()),
		Tokens:    tokens,
		Learning:  learning.New(deps),
		Dashboard: dashboard.New(st.Stats()),
		Provider:  provider,
		DB:        st,
		Logger:    logger,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
