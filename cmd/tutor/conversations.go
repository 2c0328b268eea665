package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Rrens/tutor-chat/internal/export"
	"github.com/Rrens/tutor-chat/internal/service"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Manage saved conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List saved conversations, newest first or ranked by a title query",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		conversations, err := a.Chat.SearchConversations(cmd.Context(), query)
		if err != nil {
			return err
		}
		for _, c := range conversations {
			fmt.Fprintln(cmd.OutOrStdout(), conversationLine(c))
		}
		return nil
	},
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a conversation and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid conversation id: %w", err)
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Chat.DeleteConversation(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
		return nil
	},
}

var (
	exportFormat string
	exportDir    string
)

var conversationsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a conversation transcript to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid conversation id: %w", err)
		}
		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return err
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		path, err := exportToFile(cmd.Context(), a.Chat, id, format, exportDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", path)
		return nil
	},
}

func init() {
	conversationsExportCmd.Flags().StringVarP(&exportFormat, "format", "f", string(export.FormatText), "Export format: text, markdown, json or yaml")
	conversationsExportCmd.Flags().StringVarP(&exportDir, "dir", "d", ".", "Directory to write the export to")

	conversationsCmd.AddCommand(conversationsListCmd, conversationsDeleteCmd, conversationsExportCmd)
}

// exportToFile writes the transcript of id into dir and returns the path
func exportToFile(ctx context.Context, chat *service.ChatService, id uuid.UUID, format export.Format, dir string) (string, error) {
	conv, err := chat.GetConversation(ctx, id)
	if err != nil {
		return "", fmt.Errorf("conversation %s: %w", id, err)
	}

	path := filepath.Join(dir, export.Filename(*conv, format))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	if err := chat.ExportConversation(ctx, id, format, f); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}
