package main

import (
	"context"
	"errors"
	goio "io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/g026r/pocket-gallery/pkg/api"
	"github.com/g026r/pocket-gallery/pkg/cli"
	"github.com/g026r/pocket-gallery/pkg/gallery"
	"github.com/g026r/pocket-gallery/pkg/io"
	"github.com/g026r/pocket-gallery/pkg/ui"
)

func main() {
	cfg, err := io.LoadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		log.Fatal(err)
	}

	// Both front ends own the terminal, so logs go to a file or nowhere
	if cfg.Log.File != "" {
		f, err := tea.LogToFile(cfg.Log.File, "gallery")
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
	} else {
		log.SetOutput(goio.Discard)
	}

	if cfg.UI.Plain {
		runPlain(cfg)
		return
	}

	m := ui.NewModel(cfg)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fatal(err)
	}
	if m.Err() != nil {
		os.Exit(1) // Already printed by the model
	}
}

func runPlain(cfg io.Config) {
	c, err := api.NewClient(cfg.Server.URL, cfg.Server.Timeout)
	if err != nil {
		fatal(err)
	}

	app := cli.New(gallery.New(c, gallery.WithResolution(cfg.UI.Resolution)), &cfg)
	if err := app.Run(context.Background()); errors.Is(err, cli.ErrInterrupted) {
		os.Exit(1)
	} else if err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	log.SetOutput(os.Stderr)
	log.Fatal(err)
}
