package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"codeberg.org/edtech/portal/internal/config"
	"codeberg.org/edtech/portal/internal/logger"
	"codeberg.org/edtech/portal/internal/session"
	"codeberg.org/edtech/portal/internal/tui"
	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	flags, err := config.ParseClientFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	// the terminal belongs to the UI, so logs go to a file
	if err := os.MkdirAll(filepath.Dir(flags.LogPath), 0o700); err != nil {
		fmt.Printf("error creating log directory: %v\n", err)
		os.Exit(1)
	}

	logFile, err := os.OpenFile(flags.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		fmt.Printf("error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close() //nolint:errcheck

	logger.SetDefault(logger.New(env, logFile))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := session.NewStore(
		session.NewClient(flags.APIURL),
		session.NewFilePersister(flags.StatePath),
	)

	if flags.RefreshInterval > 0 {
		go store.AutoRefresh(ctx, flags.RefreshInterval)
	}

	logger.Info("starting portal client", "api_url", flags.APIURL, "state", flags.StatePath)

	app := tui.NewApp(ctx, store, env)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		logger.ErrorErr(err, "client stopped")
		fmt.Printf("error running portal: %v\n", err)
		os.Exit(1)
	}
}
