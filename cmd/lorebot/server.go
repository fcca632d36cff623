package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"lorebot/internal/api"
	"lorebot/internal/bot"
	"lorebot/internal/composer"
	"lorebot/internal/config"
	"lorebot/internal/feedback"
	"lorebot/internal/llm"
	"lorebot/internal/pipeline"
	"lorebot/internal/reranking"
	"lorebot/internal/retrieval"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Telegram bot and the ops server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "lorebot version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.ValidateBot(); err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load the persisted indexes.
	embed, err := llm.NewEmbeddingFunc(cfg.Embedding)
	if err != nil {
		return err
	}
	set, err := retrieval.LoadSet(cfg.Storage.IndexDir, config.Categories, embed, cfg.Retrieval.TopK, cfg.Retrieval.MinSimilarity)
	if err != nil {
		return err
	}
	slog.Info("indexes loaded", "categories", strings.Join(set.Categories(), ","))

	// Build the question pipeline.
	client, err := llm.NewClient(cfg.Groq)
	if err != nil {
		return err
	}
	reranker := reranking.NewReranker(client, cfg.Rerank.Model, cfg.Rerank.Enabled, cfg.Rerank.Timeout, cfg.Rerank.TopN)
	comp := composer.New(cfg.Retrieval.MaxContextChunks, cfg.Retrieval.MaxSourceFiles)
	answerer := pipeline.New(set, reranker, comp, client, slog.Default())

	// Telegram front end.
	tg, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}
	fbLog := feedback.NewLog(cfg.Storage.FeedbackPath)
	loreBot := bot.New(tg, answerer, set, fbLog, config.Categories, slog.Default())

	// Ops server.
	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: api.NewHandler(set, version),
	}

	// MCP server (stdio transport in a goroutine).
	if cfg.Server.MCPEnabled {
		mcpSrv := api.NewMCPServer(api.MCPDeps{
			Search:     set,
			Asker:      answerer,
			Categories: config.Categories,
		})
		stdioSrv := server.NewStdioServer(mcpSrv)
		go func() {
			if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("MCP stdio server error", "error", err)
			}
		}()
		slog.Info("MCP server started (stdio transport)")
	}

	errCh := make(chan error, 2)
	go func() {
		fmt.Fprintf(os.Stderr, "lorebot ops server listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("ops server: %w", err)
		}
	}()
	go func() {
		if err := loreBot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("telegram bot: %w", err)
		}
	}()

	// Wait for signal or a component failure.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
