// Command kiosk runs the scan loop against a kiosk API using line-oriented QR scanners.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gymkiosk/internal/config"
	"gymkiosk/internal/logging"
	"gymkiosk/internal/scanloop"
)

func main() {
	cfg := config.LoadKiosk()
	logger := logging.New(os.Stderr, cfg.LogLevel, false)

	checker, err := scanloop.NewHTTPChecker(cfg.ServerURL, cfg.AdminEmail, cfg.AdminPassword, 10*time.Second)
	if err != nil {
		log.Fatalf("kiosk client: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := checker.Login(ctx); err != nil {
		logger.Warn(ctx, "initial login failed, retrying on first scan", "err", err)
	}

	camera := scanloop.NewLineCamera(cfg.Devices)
	defer func() { _ = camera.Close() }()

	ctrl := scanloop.New(camera, checker, scanloop.NewTermDisplay(os.Stdout), scanloop.Options{
		RestartDelay: cfg.RestartDelay,
		Logger:       logger,
	})
	ctrl.Init(ctx)

	// SIGUSR1 toggles the scanner, SIGUSR2 switches to the next device.
	buttons := make(chan os.Signal, 1)
	signal.Notify(buttons, syscall.SIGUSR1, syscall.SIGUSR2)
	for {
		select {
		case <-ctx.Done():
			if err := ctrl.Close(); err != nil {
				logger.Warn(context.Background(), "close scanner", "err", err)
			}
			return
		case sig := <-buttons:
			if sig == syscall.SIGUSR1 {
				ctrl.Toggle()
			} else {
				ctrl.Switch()
			}
		}
	}
}
