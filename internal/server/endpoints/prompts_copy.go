package endpoints

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/jackzampolin/promptvault/internal/api"
)

// clipboardWriteAll is swapped out in tests.
var clipboardWriteAll = clipboard.WriteAll

// CopyResult reports a prompt copied to the clipboard.
type CopyResult struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Copied bool   `json:"copied" yaml:"copied"`
}

// CopyPromptCommand copies a prompt's content to the local clipboard.
// It has no route: the clipboard belongs to the machine running the CLI.
type CopyPromptCommand struct{ promptGroup }

func (c *CopyPromptCommand) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id>",
		Short: "Copy a prompt's content to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := fetchPrompt(cmd, getServerURL(), args[0])
			if err != nil {
				return err
			}
			if err := clipboardWriteAll(p.Content); err != nil {
				return fmt.Errorf("failed to copy to clipboard: %w", err)
			}
			return api.Output(CopyResult{ID: p.ID, Title: p.Title, Copied: true})
		},
	}
}
