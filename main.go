package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "nodehal",
	Short:         "Demand/grant arbitration and orientation sensing for a peer node",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the control loop and the status server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := loggerForConfig(cfg)

		platform, err := openPlatform(cfg)
		if err != nil {
			return fmt.Errorf("initialisation error: %w", err)
		}
		defer platform.Close()
		n := newNode(platform, cfg)
		if err := n.sensor.Wake(); err != nil {
			return err
		}

		metrics := NewMetrics()
		poller := NewPoller(n.arbiter, n.sensor, initNotifiers(cfg.Notifiers), metrics, logger,
			time.Duration(cfg.PollIntervalMS)*time.Millisecond)
		server := NewServer(cfg, poller, metrics, logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		pollDone := make(chan error, 1)
		go func() { pollDone <- poller.Run(ctx) }()
		serverErrors := make(chan error, 1)
		go func() { serverErrors <- server.Start() }()

		select {
		case err := <-serverErrors:
			stop()
			<-pollDone
			return fmt.Errorf("server exited: %w", err)
		case <-ctx.Done():
			logger.Info("shutting down")
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", "error", err)
		}
		if err := <-pollDone; err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

var classifyCmd = &cobra.Command{
	Use:   "classify X Y Z",
	Short: "Classify one raw accelerometer sample",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		var axes [3]int16
		for i, a := range args {
			v, err := strconv.ParseInt(a, 10, 16)
			if err != nil {
				return fmt.Errorf("axis %d: %w", i, err)
			}
			axes[i] = int16(v)
		}
		prevName, _ := cmd.Flags().GetString("previous")
		prev, err := ParseOrientation(prevName)
		if err != nil {
			return err
		}
		o := Classify(prev, AccelerationSample{X: axes[0], Y: axes[1], Z: axes[2]})
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", o.Code(), o)
		return nil
	},
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Read the demand line and the accelerometer once",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		platform, err := openPlatform(cfg)
		if err != nil {
			return fmt.Errorf("initialisation error: %w", err)
		}
		defer platform.Close()
		n := newNode(platform, cfg)
		if err := n.sensor.Wake(); err != nil {
			return err
		}
		demand, err := n.arbiter.SampleDemand()
		if err != nil {
			return err
		}
		s, err := n.sensor.ReadAcceleration()
		if err != nil {
			return err
		}
		o := Classify(Unknown, s)
		fmt.Fprintf(cmd.OutOrStdout(), "demand=%t x=%d y=%d z=%d orientation=%s\n", demand, s.X, s.Y, s.Z, o.Code())
		return nil
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password PASSWORD",
	Short: "Print a bcrypt hash for status_password_hash",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := hashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), h)
		return nil
	},
}

func loadConfig(cmd *cobra.Command) (Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cm := NewConfigManager(path)
	if err := cm.Load(); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cm.Get(), nil
}

func init() {
	rootCmd.PersistentFlags().String("config", defaultConfigPath, "Path to the JSON configuration file")
	classifyCmd.Flags().String("previous", "?", "Previous orientation code, returned when no rule matches")
	rootCmd.AddCommand(runCmd, classifyCmd, sampleCmd, hashPasswordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
