package main

import (
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nkarpova/pokedeck/internal/config"
	"github.com/nkarpova/pokedeck/internal/session"
	"github.com/nkarpova/pokedeck/internal/tui"
	"github.com/nkarpova/pokedeck/pkg/backend"
	"github.com/nkarpova/pokedeck/pkg/pokedex"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("pokedeck " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "logout":
			return runLogout(cfg)
		default:
			fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	log, closeLog, err := openLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := session.OpenStore(cfg.SessionDBPath())
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close() //nolint:errcheck

	bc := backend.New(cfg.BackendURL)
	dex := pokedex.New(cfg.PokeAPIURL)
	mgr := session.NewManager(store, bc, log)
	bc.OnUnauthorized(mgr.Invalidate)

	app := tui.NewApp(mgr, dex, bc, log)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithReportFocus())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// openLogger writes structured logs to a file so they never bleed into the
// alternate screen.
func openLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	f, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log := slog.New(slog.NewJSONHandler(f, nil))
	return log, func() { f.Close() }, nil //nolint:errcheck
}

// runLogout clears the persisted session without starting the TUI.
func runLogout(cfg *config.Config) error {
	store, err := session.OpenStore(cfg.SessionDBPath())
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer store.Close() //nolint:errcheck
	if err := store.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	fmt.Println("signed out")
	return nil
}

func printHelp() {
	fmt.Print(`pokedeck - a terminal pokedex

usage:
  pokedeck            launch the TUI
  pokedeck logout     clear the saved session
  pokedeck version    print the version
  pokedeck help       show this help

environment:
  POKEDECK_API_URL      collection backend (default http://localhost:3001)
  POKEDECK_POKEAPI_URL  pokeapi base url
  POKEDECK_DATA_DIR     session and log directory (default ~/.pokedeck)
`)
}
