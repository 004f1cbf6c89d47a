// Copyright 2026 The Anvil Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/anvil-build/anvil/lib/archive"
	"github.com/anvil-build/anvil/lib/buildlog"
	"github.com/anvil-build/anvil/lib/hwprofile"
	"github.com/anvil-build/anvil/lib/project"
	"github.com/anvil-build/anvil/lib/sealed"
)

func cleanCmd(args []string) error {
	flagSet := pflag.NewFlagSet("anvil clean", pflag.ContinueOnError)
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

	failed := 0
	for _, report := range project.Clean(cfg.ProjectDir) {
		switch {
		case report.Err != nil:
			fmt.Printf("  %s: %v\n", report.Target, report.Err)
			failed++
		case report.Removed:
			fmt.Printf("  %s: removed\n", report.Target)
		default:
			fmt.Printf("  %s: already clean\n", report.Target)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d clean target(s) failed", failed)
	}
	return nil
}

func scanCmd(args []string) error {
	flagSet := pflag.NewFlagSet("anvil scan", pflag.ContinueOnError)
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

	projects := project.Scan(cfg.ScanRoots)
	if len(projects) == 0 {
		fmt.Println("No React Native projects found")
		return nil
	}
	for _, dir := range projects {
		fmt.Println(dir)
	}
	return nil
}

func profileCmd() error {
	profile, err := hwprofile.Sample()
	if err != nil {
		return fmt.Errorf("sampling hardware: %w", err)
	}
	fmt.Printf("cores:       %d\n", profile.Cores)
	fmt.Printf("ram:         %d GB\n", profile.TotalRAMGB)
	fmt.Printf("max workers: %d\n", profile.MaxWorkers)
	fmt.Printf("gradle heap: %d GB\n", profile.HeapGB)
	return nil
}

func logsCmd(args []string, logger *slog.Logger) error {
	if len(args) < 1 || args[0] != "prune" {
		return fmt.Errorf("usage: anvil logs prune [flags]")
	}
	flagSet := pflag.NewFlagSet("anvil logs prune", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to the config file")
	maxAge := flagSet.Duration("max-age", 7*24*time.Hour, "compress logs older than this")
	if err := flagSet.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	writer := &buildlog.Writer{Dir: cfg.Paths.Logs, Logger: logger}
	count, err := writer.Prune(*maxAge)
	if err != nil {
		return err
	}
	fmt.Printf("Compressed %d log(s)\n", count)
	return nil
}

func archiveCmd(args []string, logger *slog.Logger) error {
	if len(args) < 1 || args[0] != "clear" {
		return fmt.Errorf("usage: anvil archive clear [flags]")
	}
	flagSet := pflag.NewFlagSet("anvil archive clear", pflag.ContinueOnError)
	configPath := flagSet.String("config", "", "path to the config file")
	if err := flagSet.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	archiver := &archive.Archiver{Dir: cfg.Paths.Archive, Logger: logger}
	count, err := archiver.Clear()
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d artifact(s)\n", count)
	return nil
}

func sealCmd(args []string) error {
	flagSet := pflag.NewFlagSet("anvil seal", pflag.ContinueOnError)
	generate := flagSet.Bool("generate", false, "generate a new age keypair and exit")
	recipient := flagSet.String("recipient", "", "age public key to seal the password to")
	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if *generate {
		keypair, err := sealed.GenerateKeypair()
		if err != nil {
			return err
		}
		fmt.Printf("# public key (use as --recipient and keep in the config):\n%s\n", keypair.PublicKey)
		fmt.Printf("# private key (store as remote.identity_path, mode 0600):\n%s\n", keypair.PrivateKey)
		return nil
	}

	if *recipient == "" {
		return fmt.Errorf("either --generate or --recipient is required")
	}
	if err := sealed.ParsePublicKey(*recipient); err != nil {
		return err
	}

	password, err := readPassword()
	if err != nil {
		return err
	}
	ciphertext, err := sealed.Seal(password, *recipient)
	if err != nil {
		return err
	}
	fmt.Println(ciphertext)
	return nil
}

// readPassword reads the password without echo from a terminal, or
// verbatim from a pipe for scripted use.
func readPassword() ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return password, err
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(string(data), "\r\n")), nil
}
