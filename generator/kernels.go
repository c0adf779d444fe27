// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	version "github.com/knqyf263/go-deb-version"
	"github.com/sirupsen/logrus"
)

const (
	kernelMarker      = "vmlinuz"
	initramfsTemplate = "initramfs-%s.img"
)

// KernelEntry is a kernel image with its matching initramfs.
type KernelEntry struct {
	KernelPath    string
	Version       string // the kernel file name after the first '-'
	InitramfsPath string
}

// KernelName returns the file name of the kernel image.
func (k KernelEntry) KernelName() string { return filepath.Base(k.KernelPath) }

// InitramfsName returns the file name of the initramfs image.
func (k KernelEntry) InitramfsName() string { return filepath.Base(k.InitramfsPath) }

// compareVersions orders kernel versions in Debian version order. Versions
// that cannot be parsed sort after those that can, in byte order.
func compareVersions(a, b string) int {
	va, errA := version.NewVersion(a)
	vb, errB := version.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		if c := va.Compare(vb); c != 0 {
			return c
		}
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// ScanKernels returns the kernels in dir that have a valid initramfs, oldest
// version first.
//
// Kernels without an initramfs are logged and skipped. An error is only
// returned if dir cannot be listed.
func ScanKernels(dir string, log logrus.FieldLogger) ([]KernelEntry, error) {
	dirEntries, err := appFs.ReadDir(dir)
	if err != nil {
		return nil, &ResolutionError{Op: "list kernels in", Path: dir, Err: err}
	}

	var kernels []KernelEntry
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if !strings.Contains(name, kernelMarker) || dirEntry.IsDir() {
			continue
		}
		kernel := filepath.Join(dir, name)
		log.Infof("found kernel: %s", kernel)

		_, kernelVersion, ok := strings.Cut(name, "-")
		if !ok || kernelVersion == "" {
			log.Errorf("no version in kernel file name: %s", kernel)
			continue
		}

		initramfs := filepath.Join(dir, fmt.Sprintf(initramfsTemplate, kernelVersion))
		info, err := appFs.Stat(initramfs)
		switch {
		case os.IsNotExist(err):
			log.Errorf("file does not exist: %s", initramfs)
			continue
		case err != nil:
			log.Errorf("cannot access %s: %v", initramfs, err)
			continue
		case !info.Mode().IsRegular():
			log.Errorf("is not a file: %s", initramfs)
			continue
		}

		log.Infof("initramfs: %s", initramfs)
		kernels = append(kernels, KernelEntry{KernelPath: kernel, Version: kernelVersion, InitramfsPath: initramfs})
	}

	sort.SliceStable(kernels, func(i, j int) bool {
		return compareVersions(kernels[i].Version, kernels[j].Version) < 0
	})
	return kernels, nil
}
