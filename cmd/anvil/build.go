// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/anvil-build/anvil/lib/archive"
	"github.com/anvil-build/anvil/lib/build"
	"github.com/anvil-build/anvil/lib/buildlog"
	"github.com/anvil-build/anvil/lib/config"
	"github.com/anvil-build/anvil/lib/eventstream"
	"github.com/anvil-build/anvil/lib/observer"
	"github.com/anvil-build/anvil/lib/registry"
)

// loadConfig resolves the configuration from the --config flag or the
// ANVIL_CONFIG environment variable and validates it.
func loadConfig(path string) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newController wires the standard build controller from the config.
func newController(cfg *config.Config, obs observer.Observer, reg *registry.Registry, logger *slog.Logger) *build.Controller {
	return &build.Controller{
		Project:  cfg.ProjectDir,
		Env:      cfg.Android.Env,
		Registry: reg,
		Observer: obs,
		Logs:     &buildlog.Writer{Dir: cfg.Paths.Logs, Logger: logger},
		Archiver: &archive.Archiver{Dir: cfg.Paths.Archive, Logger: logger},
		Logger:   logger,
	}
}

// buildObserver assembles the output sinks: always the console, plus
// an event stream over a unix socket when --relay is given. The
// stream is best effort; a dead listener never fails the build.
func buildObserver(relayPath string) (observer.Observer, *eventstream.Observer, io.Closer, error) {
	console := observer.NewConsole(os.Stdout)
	if relayPath == "" {
		return console, nil, nil, nil
	}
	conn, err := net.Dial("unix", relayPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to relay socket %s: %w", relayPath, err)
	}
	stream := eventstream.NewObserver(conn)
	return observer.Multi(console, observer.NewBestEffort(stream)), stream, conn, nil
}

// reportOutcome prints the terminal build message, forwards the result
// over the event stream when one is attached, and converts a failed
// build into a matching process exit code.
func reportOutcome(outcome build.Outcome, stream *eventstream.Observer) error {
	fmt.Println(outcome.Message)
	if stream != nil {
		// Best effort: the console already carried the message.
		_ = stream.SendResult(eventstream.Result{
			Success: outcome.Success,
			Message: outcome.Message,
			LogPath: outcome.LogPath,
		})
	}
	if !outcome.Success {
		code := outcome.ExitCode
		if code <= 0 {
			// Signal death reports -1; pick a conventional code.
			code = 1
		}
		return exitCodeError{code: code}
	}
	return nil
}

func buildCmd(args []string, logger *slog.Logger) error {
	flagSet := pflag.NewFlagSet("anvil build", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to the config file")
	buildType := flagSet.String("type", "", `artifact format: "apk" or "aab" (default from config)`)
	turbo := flagSet.Bool("turbo", true, "direct gradle fast path instead of the EAS pipeline")
	relayPath := flagSet.String("relay", "", "unix socket to stream build events to")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}

	opts := build.AndroidOptions{
		BuildType: cfg.Android.BuildType,
		Turbo:     cfg.Android.Turbo,
	}
	if *buildType != "" {
		opts.BuildType = *buildType
	}
	if flagSet.Changed("turbo") {
		opts.Turbo = *turbo
	}

	obs, stream, closer, err := buildObserver(*relayPath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	reg := registry.New(logger)

	// First interrupt kills the running build through the registry so
	// it classifies as an ordinary failure with a persisted log. A
	// second one gives up and exits.
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nAborting build...")
		reg.Abort()
		<-sigCh
		os.Exit(130)
	}()

	controller := newController(cfg, obs, reg, logger)
	outcome, err := controller.BuildAndroid(context.Background(), opts)
	if err != nil {
		return err
	}
	return reportOutcome(outcome, stream)
}

func iosCmd(args []string, logger *slog.Logger) error {
	flagSet := pflag.NewFlagSet("anvil ios", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to the config file")
	buildType := flagSet.String("type", "", `destination: "device" or "simulator" (default from config)`)
	scheme := flagSet.String("scheme", "", "xcodebuild scheme (default from config)")
	relayPath := flagSet.String("relay", "", "unix socket to stream build events to")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.EnsurePaths(); err != nil {
		return err
	}
	descriptor, err := cfg.Remote.Descriptor()
	if err != nil {
		return err
	}

	opts := build.IOSOptions{
		Remote:     descriptor,
		RemotePath: cfg.IOS.RemotePath,
		Scheme:     cfg.IOS.Scheme,
		BuildType:  cfg.IOS.BuildType,
	}
	if *buildType != "" {
		opts.BuildType = *buildType
	}
	if *scheme != "" {
		opts.Scheme = *scheme
	}

	obs, stream, closer, err := buildObserver(*relayPath)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	// Interrupt cancels the context, which closes the SSH session and
	// tears the remote command down with it.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	controller := newController(cfg, obs, nil, logger)
	outcome, err := controller.BuildIOS(ctx, opts)
	if err != nil {
		return err
	}
	return reportOutcome(outcome, stream)
}

func recoverCmd(args []string, logger *slog.Logger) error {
	flagSet := pflag.NewFlagSet("anvil recover", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to the config file")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	descriptor, err := cfg.Remote.Descriptor()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	controller := newController(cfg, observer.NewConsole(os.Stdout), nil, logger)
	if err := controller.Recover(ctx, descriptor, cfg.IOS.RemotePath); err != nil {
		return err
	}
	fmt.Println("Remote environment recovered")
	return nil
}

func prewarmCmd(args []string, logger *slog.Logger) error {
	flagSet := pflag.NewFlagSet("anvil prewarm", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to the config file")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	controller := newController(cfg, observer.Discard, nil, logger)
	if err := controller.Prewarm(ctx); err != nil {
		return err
	}
	fmt.Println("Gradle daemon warmed")
	return nil
}
