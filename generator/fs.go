// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package generator

import (
	"bufio"
	"io"
	"os"
)

// FS abstracts away the filesystem.
//
// Everything the generator reads from the host, including the /proc files,
// goes through it, so that tests can run against a memory filesystem.
type FS interface {
	// Open behaves like os.Open()
	Open(path string) (io.ReadCloser, error)
	// ReadDir behaves like os.ReadDir()
	ReadDir(path string) ([]os.DirEntry, error)
	// Stat behaves like os.Stat()
	Stat(path string) (os.FileInfo, error)
}

// realFS implements FS using the os package
type realFS struct{}

func (realFS) Open(path string) (io.ReadCloser, error)    { return os.Open(path) }
func (realFS) ReadDir(path string) ([]os.DirEntry, error) { return os.ReadDir(path) }
func (realFS) Stat(path string) (os.FileInfo, error)      { return os.Stat(path) }

// appFs is our default FS
var appFs FS = realFS{}

// readLines returns the lines of a text file, without line terminators.
func readLines(path string) ([]string, error) {
	f, err := appFs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
