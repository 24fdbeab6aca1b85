package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"kavak-agent/internal/service"
)

func newKBCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: "Knowledge base utilities",
	}
	cmd.AddCommand(newKBIngestCmd(root))
	return cmd
}

func newKBIngestCmd(root *rootOptions) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Embed a text file paragraph by paragraph and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
			defer cancel()

			text, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if source == "" {
				source = filepath.Base(args[0])
			}

			repo, cfg, err := openRepository()
			if err != nil {
				return err
			}
			defer repo.Close()
			if !cfg.OpenAI.Enabled {
				return fmt.Errorf("embeddings: set OPENAI_API_KEY")
			}
			if err := repo.Migrate(ctx); err != nil {
				return err
			}

			lg := root.logger()
			client := service.NewOpenAIClient(cfg.OpenAIOptions(), lg)
			kb := service.NewKnowledgeService(client, client, repo, cfg.Knowledge.TopK, cfg.Knowledge.Timeout, lg)
			ids, err := kb.Ingest(ctx, source, string(text))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %d chunks from %s\n", len(ids), source)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "source label stored with each chunk (default: file name)")
	return cmd
}
