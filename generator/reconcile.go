// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package generator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/canonical/efibootgen/efibootmgr"
)

// Gateway is the boot manager the reconciler reads and modifies.
type Gateway interface {
	// List returns the boot manager listing, one line per entry.
	List() ([]string, error)
	// Create adds a boot entry.
	Create(entry efibootmgr.NewEntry) error
	// Delete removes the entry Boot<bootNum>.
	Delete(bootNum int) error
}

// BootMenuEntry is an entry of the boot manager listing.
type BootMenuEntry struct {
	BootNumber int
	Line       string
}

// ReconciliationPlan lists the entries to create, and the entries to delete
// once all of them have been created.
type ReconciliationPlan struct {
	Create []KernelEntry
	Delete []int
}

// Result describes what a reconciliation did.
type Result struct {
	Plan    ReconciliationPlan
	Created []string // labels of the created entries
	Deleted []int    // boot numbers of the deleted entries
}

// Reconciler replaces the boot entries carrying a label prefix with one entry
// per installed kernel.
type Reconciler struct {
	gateway Gateway
	log     logrus.FieldLogger

	// DryRun makes Reconcile stop after computing the plan.
	DryRun bool
}

// NewReconciler returns a Reconciler modifying entries through gateway.
func NewReconciler(gateway Gateway, log logrus.FieldLogger) *Reconciler {
	return &Reconciler{gateway: gateway, log: log}
}

// EntryLabel returns the label of the boot entry for a kernel version.
func EntryLabel(prefix, kernelVersion string) string {
	return prefix + " " + kernelVersion
}

// NewEntryFor returns the boot entry booting kernel from partition with cmdline.
func NewEntryFor(kernel KernelEntry, partition PartitionReference, cmdline, prefix string) efibootmgr.NewEntry {
	args := "initrd=\\" + kernel.InitramfsName()
	if cmdline != "" {
		args = cmdline + " " + args
	}
	return efibootmgr.NewEntry{
		Disk:      partition.Disk,
		Partition: partition.Partition,
		Label:     EntryLabel(prefix, kernel.Version),
		Loader:    "/" + kernel.KernelName(),
		Arguments: args,
	}
}

// FindEntries returns the entries whose listing line contains prefix.
// Lines without a valid boot number are logged and skipped.
func (r *Reconciler) FindEntries(prefix string) ([]BootMenuEntry, error) {
	lines, err := r.gateway.List()
	if err != nil {
		return nil, err
	}

	var entries []BootMenuEntry
	seen := make(map[int]bool)
	for _, line := range lines {
		r.log.Debugf("listing: %s", line)
		if !strings.Contains(line, prefix) {
			continue
		}
		num, err := efibootmgr.ParseBootNumber(line)
		if err != nil {
			r.log.Errorf("skipping entry: %v", err)
			continue
		}
		r.log.Infof("found entry: %s", line)
		if seen[num] {
			continue
		}
		seen[num] = true
		entries = append(entries, BootMenuEntry{BootNumber: num, Line: line})
	}
	return entries, nil
}

// Plan computes the entries to create and delete. Every kernel gets a new
// entry, and every existing prefixed entry is deleted.
func (r *Reconciler) Plan(kernels []KernelEntry, prefix string) (ReconciliationPlan, error) {
	if strings.TrimSpace(prefix) == "" {
		return ReconciliationPlan{}, errors.New("empty entry prefix would match every boot entry")
	}

	existing, err := r.FindEntries(prefix)
	if err != nil {
		return ReconciliationPlan{}, fmt.Errorf("cannot list boot entries: %w", err)
	}

	plan := ReconciliationPlan{Create: kernels}
	for _, entry := range existing {
		plan.Delete = append(plan.Delete, entry.BootNumber)
	}
	return plan, nil
}

// Reconcile replaces the boot entries labelled with prefix by one entry per
// kernel.
//
// All new entries are created before any old one is deleted, so there always
// is at least one entry to boot from. Any boot manager failure aborts the run:
// if a create fails, nothing is deleted. There is no rollback of entries
// already created.
func (r *Reconciler) Reconcile(kernels []KernelEntry, partition PartitionReference, cmdline, prefix string) (Result, error) {
	if len(kernels) == 0 {
		return Result{}, ErrNoKernels
	}

	plan, err := r.Plan(kernels, prefix)
	if err != nil {
		return Result{}, err
	}
	result := Result{Plan: plan}

	if r.DryRun {
		for _, kernel := range plan.Create {
			r.log.Infof("would create entry %q for %s", EntryLabel(prefix, kernel.Version), kernel.KernelPath)
		}
		for _, num := range plan.Delete {
			r.log.Infof("would delete entry Boot%04X", num)
		}
		return result, nil
	}

	for _, kernel := range plan.Create {
		entry := NewEntryFor(kernel, partition, cmdline, prefix)
		if err := r.gateway.Create(entry); err != nil {
			return result, fmt.Errorf("cannot create entry %q, keeping existing entries: %w", entry.Label, err)
		}
		result.Created = append(result.Created, entry.Label)
	}

	for _, num := range plan.Delete {
		if err := r.gateway.Delete(num); err != nil {
			return result, fmt.Errorf("cannot delete entry Boot%04X: %w", num, err)
		}
		result.Deleted = append(result.Deleted, num)
	}

	return result, nil
}
