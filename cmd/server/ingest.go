package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/artem13815/resumebot/pkg/config"
	"github.com/artem13815/resumebot/pkg/document"
	"github.com/artem13815/resumebot/pkg/ingest"
	"github.com/artem13815/resumebot/pkg/profile"
	"github.com/artem13815/resumebot/pkg/resume"
)

var (
	ingestTelegramID string
	ingestName       string
	ingestUsername   string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Process one local resume file for a member",
	Long:  "Run the upload pipeline (extract, parse, persist) on a local PDF, DOCX or TXT file and print the profile link.",
	Args:  cobra.ExactArgs(1),
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTelegramID, "telegram-id", "", "external chat identity of the member (required)")
	ingestCmd.Flags().StringVar(&ingestName, "name", "", "member display name")
	ingestCmd.Flags().StringVar(&ingestUsername, "username", "", "member handle")
	_ = ingestCmd.MarkFlagRequired("telegram-id")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := config.Load(envFile)
	logger := newLogger(cfg, os.Stderr)
	if err := cfg.Validate(false); err != nil {
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

	svc := ingest.NewService(ingest.Deps{
		Fetcher:   document.NewFileFetcher(cfg.MaxDocumentBytes),
		Extractor: resume.NewExtractor(model, logger),
		Profiles:  profile.NewService(store.profiles, policy(cfg), cfg.LinkSkills),
		Uploads:   store.uploads,
		Archive:   arch,
		BaseURL:   cfg.PublicBaseURL,
		Logger:    logger,
	})

	path := args[0]
	name := ingestName
	if name == "" {
		name = ingestTelegramID
	}
	res, err := svc.Ingest(ctx, ingest.Upload{
		Sender:   profile.Identity{ExternalID: ingestTelegramID, Name: name, Handle: ingestUsername},
		Document: document.Ref{ID: path, Name: filepath.Base(path)},
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "member %d: %d experiences, %d skills\n%s\n",
		res.Member.ID, res.Saved.Experiences, res.Saved.Skills, res.ProfileURL)
	return nil
}
