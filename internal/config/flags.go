package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// parses CLI flags for the terminal client
func ParseClientFlags(args []string) (ClientFlags, error) {
	defaults := DefaultClientFlags()

	fs := flag.NewFlagSet("portal", flag.ContinueOnError)
	apiURL := fs.String("api", defaults.APIURL, "backend API base URL")
	statePath := fs.String("state", defaults.StatePath, "path of the persisted session state")
	logPath := fs.String("log", defaults.LogPath, "path of the client log file")
	refresh := fs.Duration("refresh", defaults.RefreshInterval, "session refresh interval (0 disables)")

	if err := fs.Parse(args); err != nil {
		return ClientFlags{}, err
	}

	return ClientFlags{
		APIURL:          strings.TrimRight(*apiURL, "/"),
		StatePath:       *statePath,
		LogPath:         *logPath,
		RefreshInterval: *refresh,
	}, nil
}

// returns default flags for the terminal client
func DefaultClientFlags() ClientFlags {
	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}

	dir = filepath.Join(dir, "edtech-portal")

	return ClientFlags{
		APIURL:          apiURL,
		StatePath:       filepath.Join(dir, "auth-storage.json"),
		LogPath:         filepath.Join(dir, "portal.log"),
		RefreshInterval: time.Minute,
	}
}
