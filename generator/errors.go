// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package generator

import (
	"errors"
	"fmt"
)

// ResolutionError is returned when the host state needed to generate boot
// entries cannot be determined. It is always returned before any boot entry
// is modified.
type ResolutionError struct {
	Op   string // what we were trying to do
	Path string // the file or directory involved
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// ErrNoKernels is returned when there is no valid kernel to create entries
// for. Deleting the existing entries would leave none at all.
var ErrNoKernels = errors.New("no valid kernel found")
