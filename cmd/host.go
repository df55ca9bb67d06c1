package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/278261631/t-gui/internal/host"
	"github.com/278261631/t-gui/internal/log"
)

// runHost starts the application host: plugins are discovered and loaded per
// config, then the process waits for an interrupt.
func runHost(cmd *cobra.Command, _ []string) error {
	if cleanup, err := initLogging(); err != nil {
		return err
	} else if cleanup != nil {
		defer cleanup()
	}

	if noAutoLoad, _ := cmd.Flags().GetBool("no-auto-load"); noAutoLoad {
		cfg.Plugins.AutoLoad = false
	}

	h, err := host.New(cfg)
	if err != nil {
		return fmt.Errorf("starting host: %w", err)
	}

	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		if err := h.WatchPlugins(); err != nil {
			log.Warn(log.CatWatcher, "plugin watch unavailable", "error", err)
		}
	}

	registered := len(h.Plugins.Registry().All())
	loaded := len(h.Plugins.Loaded())
	fmt.Printf("t-gui host started (%d plugins registered, %d loaded)\n", registered, loaded)
	fmt.Println("Press Ctrl+C to stop")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	fmt.Printf("\nReceived %s, shutting down...\n", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := h.Close(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down host: %w", err)
	}

	fmt.Println("Host stopped")
	return nil
}

// initLogging enables file logging when --debug or T_GUI_DEBUG is set.
// Returns a cleanup function, or nil when logging stays off.
func initLogging() (func(), error) {
	if !debugFlag && os.Getenv("T_GUI_DEBUG") == "" {
		return nil, nil
	}

	logPath := os.Getenv("T_GUI_LOG")
	if logPath == "" {
		logPath = "debug.log"
	}

	cleanup, err := log.Init(logPath)
	if err != nil {
		return nil, fmt.Errorf("initializing logging: %w", err)
	}
	log.Info(log.CatHost, "t-gui starting", "debug", true, "logPath", logPath)
	return cleanup, nil
}
