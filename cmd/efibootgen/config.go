// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/canonical/efibootgen/efibootmgr"
	"github.com/canonical/efibootgen/generator"
)

const (
	backendEfibootmgr = "efibootmgr"
	backendEfivarfs   = "efivarfs"

	envPrefix         = "EFIBOOTGEN"
	defaultConfigName = "efibootgen"
	defaultConfigDir  = "/etc"
)

type config struct {
	generator.Options
	Backend    string // how boot entries are listed and deleted
	Efibootmgr string // path of the efibootmgr binary
	Verbose    bool
}

// addFlags declares the command line flags and binds them into v, so that
// flags take precedence over the environment and the configuration file.
func addFlags(flags *pflag.FlagSet, v *viper.Viper) error {
	flags.String("efi-dir", generator.DefaultEFIDir, "Efi partition mount point")
	flags.String("entry-prefix", generator.DefaultEntryPrefix, "Efi entry prefix")
	flags.String("entry-cmdline", "", "Efi entry cmdline, defaults to the running kernel's")
	flags.String("backend", backendEfibootmgr, "How to list and delete entries: efibootmgr or efivarfs")
	flags.String("efibootmgr", efibootmgr.DefaultPath, "Path of the efibootmgr binary")
	flags.Bool("dry-run", false, "Only print what would be done")
	flags.BoolP("verbose", "v", false, "Enable debug output")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v.BindPFlags(flags)
}

// readConfigFile reads path, or the default configuration file if path is
// empty. A missing default configuration file is not an error.
func readConfigFile(v *viper.Viper, path string) error {
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("cannot read configuration file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(defaultConfigName)
	v.AddConfigPath(defaultConfigDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("cannot read configuration file: %w", err)
	}
	return nil
}

func loadConfig(v *viper.Viper) (config, error) {
	cfg := config{
		Options: generator.Options{
			EFIDir:       v.GetString("efi-dir"),
			EntryPrefix:  v.GetString("entry-prefix"),
			EntryCmdline: v.GetString("entry-cmdline"),
			DryRun:       v.GetBool("dry-run"),
		},
		Backend:    v.GetString("backend"),
		Efibootmgr: v.GetString("efibootmgr"),
		Verbose:    v.GetBool("verbose"),
	}

	switch cfg.Backend {
	case backendEfibootmgr, backendEfivarfs:
	default:
		return config{}, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if strings.TrimSpace(cfg.EntryPrefix) == "" {
		return config{}, errors.New("entry prefix must not be empty")
	}
	return cfg, nil
}
