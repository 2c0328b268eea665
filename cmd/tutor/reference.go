package main

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/spf13/cobra"
)

var referenceCmd = &cobra.Command{
	Use:   "reference",
	Short: "Manage the reference document used when drafting teaching plans",
}

var referenceLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Replace the reference document with a text or markdown file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		if !utf8.Valid(data) {
			return fmt.Errorf("%s is not UTF-8 text", args[0])
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Chat.SaveReferenceDocument(cmd.Context(), string(data)); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Reference document updated (%d bytes)\n", len(data))
		return nil
	},
}

var referenceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current reference document",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		doc, err := a.Chat.GetReferenceDocument(cmd.Context())
		if err != nil {
			return err
		}
		if doc == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "No reference document set.")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc)
		return nil
	},
}

func init() {
	referenceCmd.AddCommand(referenceLoadCmd, referenceShowCmd)
}
