package config

import (
	"os"
	"strconv"
	"time"
)

// Settings holds the runtime configuration assembled from CLI flags and
// environment variables. It is constructed once in main and passed down.
type Settings struct {
	Port        int
	Bind        string
	AllowSubnet string
	DBPath      string
	CSVPath     string
	LogFile     string
	GraphQL     bool
}

// ApplyEnv fills in settings from environment variables when the
// corresponding flag was left at its zero/default value.
func (s *Settings) ApplyEnv() error {
	if s.Port == 0 {
		if v := os.Getenv("PORT"); v != "" {
			p, err := strconv.Atoi(v)
			if err != nil {
				return &EnvError{Var: "PORT", Value: v}
			}
			s.Port = p
		}
	}
	if v := os.Getenv("DB_PATH"); v != "" && s.DBPath == DefaultDBPath {
		s.DBPath = v
	}
	if v := os.Getenv("CSV_PATH"); v != "" && s.CSVPath == DefaultCSVPath {
		s.CSVPath = v
	}
	return nil
}

// EnvError reports an environment variable that could not be parsed.
type EnvError struct {
	Var   string
	Value string
}

func (e *EnvError) Error() string {
	return "invalid " + e.Var + " environment variable: " + e.Value
}

const (
	DefaultDBPath  = "./ifscdir.db"
	DefaultCSVPath = "./bank_branches.csv"
)

// Timeouts holds HTTP server timing knobs.
type Timeouts struct {
	// Request is the per-request timeout applied by the router middleware.
	Request time.Duration

	// Read bounds reading of the request including the body.
	Read time.Duration

	// Idle bounds keep-alive connections between requests.
	Idle time.Duration

	// Shutdown is how long in-flight requests get to drain on exit.
	Shutdown time.Duration
}

// DefaultTimeouts returns the default timeout configuration.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Request:  60 * time.Second,
		Read:     15 * time.Second,
		Idle:     120 * time.Second,
		Shutdown: 30 * time.Second,
	}
}
