// ABOUTME: Entry point for the veilnote web server
// ABOUTME: Wires the store, auth strategies, sessions, and HTTP surface

package main

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"github.com/veilnote/veilnote/internal/auth"
	"github.com/veilnote/veilnote/internal/config"
	"github.com/veilnote/veilnote/internal/session"
	"github.com/veilnote/veilnote/internal/store"
	"github.com/veilnote/veilnote/internal/web"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
             _ _             _
 __   _____(_) |_ __   ___ | |_ ___
 \ \ / / _ \ | | '_ \ / _ \| __/ _ \
  \ V /  __/ | | | | | (_) | ||  __/
   \_/ \___|_|_|_| |_|\___/ \__\___|
`

// getConfigPath returns the path to the veilnote config file.
// Priority: VEILNOTE_CONFIG env var > XDG_CONFIG_HOME/veilnote/config.yaml > ~/.config/veilnote/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("VEILNOTE_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "veilnote", "config.yaml")
}

// getDataPath returns the path to the veilnote data directory.
// Priority: XDG_DATA_HOME/veilnote > ~/.local/share/veilnote
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "veilnote")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: veilnote <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve   Start the web server")
		fmt.Println("  init    Create a new config file interactively")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:   %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("HTTP:     %s\n", cfg.Server.Addr)
	green.Print("    ▶ ")
	fmt.Printf("Database: %s\n", cfg.Database.Path)
	green.Print("    ▶ ")
	if cfg.Google.Enabled() {
		fmt.Println("Google:   enabled")
	} else {
		fmt.Println("Google:   disabled")
	}
	fmt.Println()

	logger.Info("starting veilnote",
		"config", configPath,
		"addr", cfg.Server.Addr,
	)

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer s.Close()

	local := auth.NewLocal(s)

	var federated *auth.Federated
	if cfg.Google.Enabled() {
		signer := auth.NewStateSigner([]byte(cfg.Session.Secret))
		federated = auth.NewFederated(auth.FederatedConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			CallbackURL:  cfg.Google.CallbackURL,
		}, s, signer)
	}

	sessions := session.NewManager(s)
	handlers := web.New(local, federated, sessions, s)

	server := web.NewServer(cfg.Server.Addr, handlers.Routes(), s)
	return server.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}

func prompt(reader *bufio.Reader, question, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", question, defaultValue)
	} else {
		fmt.Printf("%s: ", question)
	}

	answer, err := reader.ReadString('\n')
	if err != nil {
		return defaultValue
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return defaultValue
	}
	return answer
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("veilnote configuration setup")
	fmt.Println("============================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDbPath := filepath.Join(getDataPath(), "veilnote.db")

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	addr := prompt(reader, "HTTP address", "localhost:3000")

	fmt.Println("\n--- Database Configuration ---")
	dbPath := prompt(reader, "SQLite database path", defaultDbPath)

	fmt.Println("\n--- Session Configuration ---")
	secret := prompt(reader, "Session secret (leave empty to generate)", "")
	if secret == "" {
		raw := make([]byte, 32)
		if _, err := rand.Read(raw); err != nil {
			return fmt.Errorf("generating session secret: %w", err)
		}
		secret = hex.EncodeToString(raw)
		fmt.Println("Generated a random session secret.")
	}

	fmt.Println("\n--- Google Sign-In (optional) ---")
	clientID := prompt(reader, "Google client id (leave empty to disable)", "")
	var clientSecret, callbackURL string
	if clientID != "" {
		clientSecret = prompt(reader, "Google client secret", "")
		callbackURL = prompt(reader, "Callback URL", fmt.Sprintf("http://%s/auth/google/callback", addr))
	}

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# veilnote configuration\n")
	cfg.WriteString("# Generated by veilnote init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  addr: %q\n", addr))
	cfg.WriteString("\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: %q\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("session:\n")
	cfg.WriteString(fmt.Sprintf("  secret: %q\n", secret))
	cfg.WriteString("\n")

	if clientID != "" {
		cfg.WriteString("google:\n")
		cfg.WriteString(fmt.Sprintf("  client_id: %q\n", clientID))
		cfg.WriteString(fmt.Sprintf("  client_secret: %q\n", clientSecret))
		cfg.WriteString(fmt.Sprintf("  callback_url: %q\n", callbackURL))
		cfg.WriteString("\n")
	}

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: %q\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: %q\n", logFormat))

	if dir := filepath.Dir(outputFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}

	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nWrote %s\n", outputFile)
	fmt.Println("Start the server with: veilnote serve")
	return nil
}
