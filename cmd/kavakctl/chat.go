package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kavak-agent/internal/repository"
	"kavak-agent/internal/service"
)

func newChatCmd(root *rootOptions) *cobra.Command {
	var (
		catalogPath string
		channel     string
		aliasFile   string
		pageSize    int
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the agent from the terminal",
		Long:  "Reads one message per line from stdin and prints the agent's reply. Conversation state lives in memory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, dropped, err := repository.LoadCatalogCSV(catalogPath)
			if err != nil {
				return fmt.Errorf("load catalog: %w", err)
			}
			aliases := service.DefaultAliases()
			if aliasFile != "" {
				if aliases, err = service.LoadAliases(aliasFile); err != nil {
					return fmt.Errorf("load aliases: %w", err)
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Catálogo: %d autos (%d filas descartadas). Escribe 'salir' para terminar.\n", len(items), dropped)

			chat := service.NewChatService(
				service.NewCatalogHolder(service.NewCatalog(items)),
				repository.NewMemoryStateStore(0),
				nil,
				service.NewLogLeadSink(root.logger()),
				service.ChatOptions{PageSize: pageSize, Aliases: aliases, Logger: root.logger()},
			)

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "salir" || line == "exit" {
					break
				}
				fmt.Fprintln(out, chat.Handle(cmd.Context(), channel, line))
				fmt.Fprintln(out)
			}
			return scanner.Err()
		},
	}
	cmd.Flags().StringVar(&catalogPath, "catalog", "data/catalog.csv", "catalog CSV file")
	cmd.Flags().StringVar(&channel, "channel", service.DefaultChannel, "conversation channel id")
	cmd.Flags().StringVar(&aliasFile, "aliases", "", "optional YAML alias override file")
	cmd.Flags().IntVar(&pageSize, "page-size", 5, "results per page")
	return cmd
}
