// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package generator

import (
	"errors"
	"strings"
	"unicode"

	"github.com/sirupsen/logrus"
)

const cmdlinePath = "/proc/cmdline"

// splitParams splits a kernel command line into parameters. Like the kernel,
// it does not split on whitespace inside double quotes. A quote left open
// does not extend to the end of the line: the unterminated parameter is split
// on whitespace instead.
func splitParams(cmdline string) []string {
	var params []string
	var param strings.Builder
	quoted := false
	for _, r := range cmdline {
		switch {
		case r == '"':
			quoted = !quoted
		case !quoted && unicode.IsSpace(r):
			if param.Len() > 0 {
				params = append(params, param.String())
				param.Reset()
			}
			continue
		}
		param.WriteRune(r)
	}
	if quoted {
		return append(params, strings.Fields(param.String())...)
	}
	if param.Len() > 0 {
		params = append(params, param.String())
	}
	return params
}

// StripInitrd removes every initrd= parameter from a kernel command line.
// The remaining parameters are joined with single spaces.
func StripInitrd(cmdline string) string {
	var params []string
	for _, param := range splitParams(cmdline) {
		if strings.HasPrefix(strings.TrimLeft(param, `"'`), "initrd=") {
			continue
		}
		params = append(params, param)
	}
	return strings.Join(params, " ")
}

// CurrentCmdline returns the command line the running kernel was booted with,
// minus its initrd= parameter, which is specific to the booted kernel.
func CurrentCmdline(log logrus.FieldLogger) (string, error) {
	lines, err := readLines(cmdlinePath)
	if err != nil {
		return "", &ResolutionError{Op: "read kernel command line from", Path: cmdlinePath, Err: err}
	}
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return "", &ResolutionError{Op: "read kernel command line from", Path: cmdlinePath, Err: errors.New("empty command line")}
	}

	cmdline := StripInitrd(strings.TrimSpace(lines[0]))
	log.Infof("kernel command line: %s", cmdline)
	return cmdline, nil
}
