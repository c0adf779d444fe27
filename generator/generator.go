// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

// Package generator keeps the firmware boot menu in sync with the kernels
// installed on the EFI system partition.
package generator

import (
	"github.com/sirupsen/logrus"
)

// Default settings
const (
	DefaultEFIDir      = "/boot"
	DefaultEntryPrefix = "Gentoo Efistub"
)

// Options configures a Run.
type Options struct {
	EFIDir       string // mount point of the EFI system partition, holding the kernels
	EntryPrefix  string // label prefix of the entries we own
	EntryCmdline string // command line for new entries; empty uses the running one
	DryRun       bool   // only log what would be done
}

// Run resolves the EFI system partition, scans it for kernels and reconciles
// the boot entries through gateway.
//
// Everything is resolved before the boot manager is first queried, so a
// ResolutionError never leaves the boot entries modified.
func Run(opts Options, gateway Gateway, log logrus.FieldLogger) (Result, error) {
	if opts.EFIDir == "" {
		opts.EFIDir = DefaultEFIDir
	}
	if opts.EntryPrefix == "" {
		opts.EntryPrefix = DefaultEntryPrefix
	}

	partition, err := ResolveDevice(opts.EFIDir, log)
	if err != nil {
		return Result{}, err
	}
	log.Infof("efi partition: %v", partition)

	cmdline := opts.EntryCmdline
	if cmdline == "" {
		if cmdline, err = CurrentCmdline(log); err != nil {
			return Result{}, err
		}
	}

	kernels, err := ScanKernels(opts.EFIDir, log)
	if err != nil {
		return Result{}, err
	}

	reconciler := NewReconciler(gateway, log)
	reconciler.DryRun = opts.DryRun
	return reconciler.Reconcile(kernels, partition, cmdline, opts.EntryPrefix)
}
