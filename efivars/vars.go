// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package efivars

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// EfivarfsPath is where the kernel exposes EFI variables.
const EfivarfsPath = "/sys/firmware/efi/efivars"

var statfsMagic = func(path string) (uint32, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}
	return uint32(st.Type), nil
}

// VariablesSupported returns nil if path is a mounted efivarfs, and an error
// describing why variables cannot be accessed otherwise.
func VariablesSupported(path string) error {
	magic, err := statfsMagic(path)
	if err != nil {
		return fmt.Errorf("cannot access %s: %w", path, err)
	}
	if magic != unix.EFIVARFS_MAGIC {
		return fmt.Errorf("%s is not an efivarfs mount (filesystem magic %#x)", path, magic)
	}
	return nil
}
