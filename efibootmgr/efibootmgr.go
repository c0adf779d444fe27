// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

// Package efibootmgr talks to the firmware boot manager, either through the
// efibootmgr binary or directly through efivarfs.
package efibootmgr

import (
	"bytes"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultPath is the efibootmgr binary looked up in $PATH.
const DefaultPath = "efibootmgr"

// NewEntry describes a boot entry to create.
type NewEntry struct {
	Disk      string // disk holding the EFI system partition, for example /dev/nvme0n1
	Partition int    // partition number on Disk, starting at 1
	Label     string // description shown in the firmware boot menu
	Loader    string // path of the loader image relative to the partition root
	Arguments string // load option arguments, stored as UTF-16
}

// GatewayError is returned for any failed boot manager operation.
type GatewayError struct {
	Command []string // the command that failed
	Output  string   // diagnostic output of the command, if any
	Err     error
}

func (e *GatewayError) Error() string {
	msg := fmt.Sprintf("%s failed: %v", strings.Join(e.Command, " "), e.Err)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

func (e *GatewayError) Unwrap() error { return e.Err }

// runCommand runs a command to completion, returning its stdout and stderr
var runCommand = func(name string, args ...string) (stdout, stderr []byte, err error) {
	var outBuf, errBuf bytes.Buffer
	cmd := exec.Command(name, args...)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	err = cmd.Run()
	return outBuf.Bytes(), errBuf.Bytes(), err
}

// Tool manages boot entries by running efibootmgr.
type Tool struct {
	path string
	log  logrus.FieldLogger
}

// NewTool returns a Tool running the efibootmgr binary at path. An empty path
// selects DefaultPath.
func NewTool(path string, log logrus.FieldLogger) *Tool {
	if path == "" {
		path = DefaultPath
	}
	return &Tool{path: path, log: log}
}

func (t *Tool) run(args ...string) (string, error) {
	command := append([]string{t.path}, args...)
	t.log.Info(strings.Join(command, " "))

	stdout, stderr, err := runCommand(t.path, args...)
	if err != nil {
		output := strings.TrimSpace(string(stderr))
		if output != "" {
			t.log.Error(output)
		}
		return "", &GatewayError{Command: command, Output: output, Err: err}
	}

	out := strings.TrimSpace(string(stdout))
	if out != "" {
		t.log.Debugf("%s output:\n%s", t.path, out)
	}
	return out, nil
}

// List returns the boot manager listing, one line per entry.
func (t *Tool) List() ([]string, error) {
	out, err := t.run()
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\n"), nil
}

// Create adds a new boot entry. efibootmgr puts the new entry first in
// BootOrder.
func (t *Tool) Create(entry NewEntry) error {
	_, err := t.run(
		"--create",
		"--disk", entry.Disk,
		"--part", strconv.Itoa(entry.Partition),
		"--label", entry.Label,
		"--loader", entry.Loader,
		"--unicode", entry.Arguments,
	)
	return err
}

// Delete removes the entry Boot<bootNum>.
func (t *Tool) Delete(bootNum int) error {
	_, err := t.run("--delete-bootnum", "--bootnum", fmt.Sprintf("%04X", bootNum))
	return err
}
