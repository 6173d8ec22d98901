// Command pdfmeta edits the metadata tags of a PDF file through a terminal
// form. The edited copy replaces the original, which is kept as a backup.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Manitary/pdf-metadata-editor/internal/config"
	"github.com/Manitary/pdf-metadata-editor/internal/ui"
)

func main() {
	cfg, err := config.FromArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	logger, closeLog := cfg.NewLogger()
	defer closeLog()
	slog.SetDefault(logger)

	program := tea.NewProgram(ui.New(cfg, logger), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		logger.Error("program aborted", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
