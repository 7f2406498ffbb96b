// Package cmd - server and weather commands
package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sitemate/internal/config"
	"sitemate/internal/logging"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the estimation API over HTTP",
	RunE:  runServe,
}

var weatherCmd = &cobra.Command{
	Use:   "weather",
	Short: "Current site weather and concrete pouring advice",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		loc := siteLocation()
		adv, err := a.Weather.Current(ctx, loc)
		if err != nil {
			return err
		}
		if jsonOutput() {
			return writeJSON(cmd.OutOrStdout(), adv)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %.1f°C, %s\n%s\n", loc, adv.TemperatureC, adv.Condition, adv.Advice)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(weatherCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	if serveAddr != "" {
		cfg.Server.Address = serveAddr
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	server := a.HTTP()
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case s := <-sig:
		logging.Info("shutting down", zap.String("signal", s.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
