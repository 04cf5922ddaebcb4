package config

import "time"

// web frontend configuration
type Config struct {
	JWTSecret      string
	SessionSecret  string
	APIURL         string
	Port           string
	Environment    string
	CORSOrigins    []string
	LoginRateLimit string
}

// terminal client configuration
type ClientFlags struct {
	APIURL          string
	StatePath       string
	LogPath         string
	RefreshInterval time.Duration
}
