package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"docsage/internal/api"
	"docsage/internal/chat"
	"docsage/internal/config"
	"docsage/internal/task"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the local gateway and MCP server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show gateway and backend status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

// gatewayToken returns the configured gateway token. It is a secret key,
// so the file backend never carries it; the env var is the only way to set
// it and the error says so.
func gatewayToken(cfg config.Config) (string, error) {
	if cfg.Gateway.Token == "" {
		return "", fmt.Errorf("gateway token not set; set DOCSAGE_GATEWAY_TOKEN in the environment or a .env file")
	}
	return cfg.Gateway.Token, nil
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "docsage.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "docsage version %s\n", version)

	svc, err := newServices()
	if err != nil {
		return err
	}
	cfg := svc.cfg

	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	if _, err := gatewayToken(cfg); err != nil {
		return err
	}

	// Refuse to double-start: check the health endpoint first.
	pidPath := pidFilePath(config.DataDir())
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Gateway.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("docsage is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("docsage is already running on port %d", cfg.Gateway.Port)
		return fmt.Errorf("server already running on port %d", cfg.Gateway.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracker := task.NewTracker(svc.facade)
	threads := chat.NewRegistry()

	handler := api.NewGatewayHandler(api.GatewayDeps{
		Tracker:  tracker,
		Threads:  threads,
		Analyses: svc.files,
		Token:    cfg.Gateway.Token,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Gateway.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// MCP server over stdio, alongside the HTTP gateway.
	mcpSrv := api.NewMCPServer(api.MCPDeps{Tracker: tracker})
	stdioSrv := server.NewStdioServer(mcpSrv)
	go func() {
		if err := stdioSrv.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("MCP stdio server error", "error", err)
		}
	}()
	slog.Info("MCP server started (stdio transport)")

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "docsage listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	pidPath := pidFilePath(config.DataDir())
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("docsage is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop docsage (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to docsage (PID %d)", pid)
	return nil
}

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	client := &http.Client{Timeout: 2 * time.Second}

	gatewayURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Gateway.Port)
	resp, err := client.Get(gatewayURL + "/health")
	if err != nil {
		printStatus("Gateway", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			printStatus("Gateway", "running on port %d", cfg.Gateway.Port)
		} else {
			printStatus("Gateway", "error (HTTP %d)", resp.StatusCode)
		}
	}

	backendResp, err := client.Get(strings.TrimRight(cfg.Orchestrator.BaseURL, "/") + "/health")
	if err != nil {
		printStatus("Backend", "not reachable")
	} else {
		backendResp.Body.Close()
		printStatus("Backend", "running at %s", cfg.Orchestrator.BaseURL)
	}

	printStatus("Auth service", "%s", cfg.Auth.BaseURL)
	printStatus("Files service", "%s", cfg.Files.BaseURL)
	printStatus("History service", "%s", cfg.History.BaseURL)
	printStatus("Fan-out limit", "%d", cfg.Client.FanOutLimit)
	printStatus("Data dir", "%s", config.DataDir())
	return nil
}
