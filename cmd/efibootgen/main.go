// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/canonical/efibootgen/efibootmgr"
	"github.com/canonical/efibootgen/generator"
)

// newGateway returns the boot manager selected by cfg
var newGateway = func(cfg config, log logrus.FieldLogger) (generator.Gateway, error) {
	tool := efibootmgr.NewTool(cfg.Efibootmgr, log)
	if cfg.Backend == backendEfivarfs {
		return efibootmgr.NewBootManagerFromSystem(tool, log)
	}
	return tool, nil
}

var runGenerator = generator.Run

func newRootCmd(v *viper.Viper, log *logrus.Logger) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "efibootgen",
		Short:         "Automate EFI entries generation with efibootmgr",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := readConfigFile(v, configFile); err != nil {
				return err
			}
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			if cfg.Verbose {
				log.SetLevel(logrus.DebugLevel)
			}

			gateway, err := newGateway(cfg, log)
			if err != nil {
				return err
			}
			result, err := runGenerator(cfg.Options, gateway, log)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{
				"created": len(result.Created),
				"deleted": len(result.Deleted),
			}).Info("boot entries up to date")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file (default /etc/efibootgen.yaml)")
	if err := addFlags(cmd.Flags(), v); err != nil {
		log.WithError(err).Fatal("cannot bind flags")
	}
	return cmd
}

func newLogger() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.InfoLevel)
	return log
}

func main() {
	log := newLogger()
	if err := newRootCmd(viper.New(), log).Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}
