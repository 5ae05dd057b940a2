package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	_ "github.com/artem13815/resumebot/docs"

	httpapi "github.com/artem13815/resumebot/api/http"
	"github.com/artem13815/resumebot/api/http/handlers"
	"github.com/artem13815/resumebot/api/telegram"
	"github.com/artem13815/resumebot/pkg/config"
	"github.com/artem13815/resumebot/pkg/document"
	"github.com/artem13815/resumebot/pkg/ingest"
	"github.com/artem13815/resumebot/pkg/profile"
	"github.com/artem13815/resumebot/pkg/resume"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the Telegram bot",
	Long:  "Run the profile HTTP API and the Telegram bot; blocks until SIGINT/SIGTERM.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// Load configuration from env/.env
	cfg := config.Load(envFile)
	logger := newLogger(cfg, os.Stdout)
	if err := cfg.Validate(true); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.close()

	model, err := newChatModel(ctx, cfg)
	if err != nil {
		return err
	}
	arch, err := newArchive(ctx, cfg)
	if err != nil {
		return err
	}

	botAPI, err := telegram.Connect(cfg.TelegramToken)
	if err != nil {
		return err
	}

	profiles := profile.NewService(store.profiles, policy(cfg), cfg.LinkSkills)
	svc := ingest.NewService(ingest.Deps{
		Fetcher:   document.NewHTTPFetcher(telegram.Resolver(botAPI), &http.Client{Timeout: time.Minute}, cfg.MaxDocumentBytes),
		Extractor: resume.NewExtractor(model, logger),
		Profiles:  profiles,
		Uploads:   store.uploads,
		Archive:   arch,
		BaseURL:   cfg.PublicBaseURL,
		Logger:    logger,
	})
	bot := telegram.NewBot(botAPI, svc, logger.With("component", "telegram"))

	app := httpapi.NewApp(logger)
	httpapi.Register(app,
		handlers.NewHealthHandler(store.readiness),
		handlers.NewProfileHandler(profiles, logger),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "port", cfg.Port)
		return app.Listen(":" + cfg.Port)
	})
	g.Go(func() error {
		return bot.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("goodbye")
	return nil
}
