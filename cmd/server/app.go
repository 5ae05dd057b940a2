package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/artem13815/resumebot/pkg/archive"
	"github.com/artem13815/resumebot/pkg/config"
	"github.com/artem13815/resumebot/pkg/health"
	"github.com/artem13815/resumebot/pkg/health/checkers"
	"github.com/artem13815/resumebot/pkg/ingest"
	"github.com/artem13815/resumebot/pkg/llm"
	"github.com/artem13815/resumebot/pkg/llm/gemini"
	"github.com/artem13815/resumebot/pkg/llm/openai"
	"github.com/artem13815/resumebot/pkg/profile"
	pgrepo "github.com/artem13815/resumebot/pkg/repository/postgres"
	sqliterepo "github.com/artem13815/resumebot/pkg/repository/sqlite"
	"github.com/artem13815/resumebot/pkg/storage/postgres"
	"github.com/artem13815/resumebot/pkg/storage/sqlite"
)

func newLogger(cfg config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// storage bundles the repositories of whichever backend DATABASE_URL selects.
type storage struct {
	profiles  profile.Repository
	uploads   ingest.UploadLog
	readiness health.ReadinessUseCase
	close     func()
}

func openStorage(ctx context.Context, dsn string) (*storage, error) {
	switch {
	case postgres.IsDSN(dsn):
		pool, err := postgres.Connect(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		// Initialize repositories (also ensures DB schema).
		profiles, err := pgrepo.NewProfileRepository(pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init profile repo: %w", err)
		}
		uploads, err := pgrepo.NewUploadRepository(pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("init upload repo: %w", err)
		}
		return &storage{
			profiles:  profiles,
			uploads:   uploads,
			readiness: health.NewService(checkers.NewPostgresChecker(pool)),
			close:     pool.Close,
		}, nil

	case sqlite.IsDSN(dsn):
		db, err := sqlite.Open(ctx, dsn)
		if err != nil {
			return nil, err
		}
		profiles, err := sqliterepo.NewProfileRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init profile repo: %w", err)
		}
		uploads, err := sqliterepo.NewUploadRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("init upload repo: %w", err)
		}
		return &storage{
			profiles:  profiles,
			uploads:   uploads,
			readiness: health.NewService(checkers.NewSQLiteChecker(db)),
			close:     func() { _ = db.Close() },
		}, nil
	}
	return nil, errors.New("DATABASE_URL must start with postgres://, sqlite:// or file:")
}

func newChatModel(ctx context.Context, cfg config.Config) (llm.ChatModel, error) {
	switch cfg.LLMProvider {
	case "openai":
		return openai.New(openai.Config{
			APIKey:   cfg.OpenAIAPIKey,
			BaseURL:  cfg.OpenAIBaseURL,
			Model:    cfg.OpenAIModel,
			AppTitle: "resumebot",
			Referer:  cfg.PublicBaseURL,
		})
	case "gemini":
		return gemini.New(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
	}
	return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
}

func newArchive(ctx context.Context, cfg config.Config) (archive.Store, error) {
	switch strings.ToLower(cfg.ArchiveDriver) {
	case "", "none":
		return archive.Nop{}, nil
	case "disk":
		return archive.NewDisk(cfg.ArchiveDir), nil
	case "s3":
		return archive.NewS3(ctx, archive.S3Config{
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	}
	return nil, fmt.Errorf("unknown ARCHIVE_DRIVER %q", cfg.ArchiveDriver)
}

func policy(cfg config.Config) profile.Policy {
	if cfg.ExperiencePolicy == config.PolicyReplaceAll {
		return profile.PolicyReplaceAll
	}
	return profile.PolicyAppend
}
