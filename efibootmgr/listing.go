// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package efibootmgr

import (
	"fmt"
	"strconv"
	"strings"
)

const bootNumberWidth = 4

// ParseBootNumber extracts the boot number from a line of efibootmgr output.
//
// Entries are listed as "Boot0003* Label ...", where the '*' marks an active
// entry. Lines starting with "Boot" and 4 hex digits use those digits, so a
// '*' in the label or arguments of an inactive entry is never mistaken for
// the delimiter. Other lines use the 4 characters right before the first '*'.
func ParseBootNumber(line string) (int, error) {
	if strings.HasPrefix(line, "Boot") && len(line) >= 4+bootNumberWidth {
		if num, err := parseHex(line[4 : 4+bootNumberWidth]); err == nil {
			return num, nil
		}
	}

	i := strings.Index(line, "*")
	if i < 0 {
		return -1, fmt.Errorf("not a boot entry: %q", line)
	}
	if i < bootNumberWidth {
		return -1, fmt.Errorf("no boot number before '*' in %q", line)
	}
	field := line[i-bootNumberWidth : i]
	num, err := parseHex(field)
	if err != nil {
		return -1, fmt.Errorf("invalid boot number %q in %q", field, line)
	}
	return num, nil
}

func parseHex(field string) (int, error) {
	num, err := strconv.ParseUint(field, 16, 16)
	if err != nil {
		return -1, err
	}
	return int(num), nil
}
