// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

// Package efivars contains helpers for EFI variable payloads.
package efivars

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

var utf16le = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// LoadOptionArgumentToUTF8 decodes the optional data of a load option.
//
// Optional data is free-form. It is only decoded as UTF-16LE when it has an
// even length, in which case any trailing NUL characters are dropped. Data
// that does not look like UTF-16 is returned as is if it is valid UTF-8, and
// as an empty string otherwise.
func LoadOptionArgumentToUTF8(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	if len(data)%2 == 0 {
		decoded, err := utf16le.NewDecoder().Bytes(data)
		if err == nil {
			return string(bytes.TrimRight(decoded, "\x00"))
		}
	}
	if utf8.Valid(data) {
		return string(bytes.TrimRight(data, "\x00"))
	}
	return ""
}
