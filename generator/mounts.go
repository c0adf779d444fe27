// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package generator

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/moby/sys/mountinfo"
	"github.com/sirupsen/logrus"
)

const (
	mountsPath   = "/proc/mounts"
	devicePrefix = "/dev/"
)

var (
	// Device names containing one of these put a 'p' between the disk and
	// the partition number, for example nvme0n1p2 or mmcblk0p1.
	partitionSeparatorMarkers = []string{"nvme", "mmcblk", "loop", "nbd"}

	partitionSuffix = regexp.MustCompile(`[0-9]+$`)

	mountinfoGetMounts = mountinfo.GetMounts

	errNotMountPoint = errors.New("not a mount point")
)

// MountRecord is a line of the mount table.
type MountRecord struct {
	Source     string
	MountPoint string
	Rest       string // file system type, options, dump and pass fields
}

// parseMountRecord splits a mount table line. It returns false for lines with
// less than two fields.
func parseMountRecord(line string) (MountRecord, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return MountRecord{}, false
	}
	return MountRecord{
		Source:     unescapeMountField(fields[0]),
		MountPoint: unescapeMountField(fields[1]),
		Rest:       strings.Join(fields[2:], " "),
	}, true
}

// unescapeMountField decodes the \ooo octal escapes the kernel uses for
// whitespace and backslashes in mount table fields.
func unescapeMountField(field string) string {
	if !strings.Contains(field, `\`) {
		return field
	}
	var b strings.Builder
	for i := 0; i < len(field); i++ {
		if field[i] == '\\' && i+3 < len(field) && isOctal(field[i+1]) && isOctal(field[i+2]) && isOctal(field[i+3]) {
			b.WriteByte((field[i+1]-'0')<<6 | (field[i+2]-'0')<<3 | (field[i+3] - '0'))
			i += 3
			continue
		}
		b.WriteByte(field[i])
	}
	return b.String()
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }

// PartitionReference identifies a partition by its disk and partition number.
type PartitionReference struct {
	Disk      string // for example /dev/nvme0n1
	Partition int    // starting at 1
}

func hasPartitionSeparator(disk string) bool {
	name := filepath.Base(disk)
	for _, marker := range partitionSeparatorMarkers {
		if strings.Contains(name, marker) {
			return true
		}
	}
	return false
}

// Device returns the device node of the partition.
func (p PartitionReference) Device() string {
	if hasPartitionSeparator(p.Disk) {
		return fmt.Sprintf("%sp%d", p.Disk, p.Partition)
	}
	return fmt.Sprintf("%s%d", p.Disk, p.Partition)
}

func (p PartitionReference) String() string {
	return fmt.Sprintf("%s partition %d", p.Disk, p.Partition)
}

// SplitPartition splits a partition device node into its disk and partition
// number, for example /dev/sda1 into /dev/sda and 1, and /dev/nvme0n1p2 into
// /dev/nvme0n1 and 2.
func SplitPartition(device string) (PartitionReference, error) {
	suffix := partitionSuffix.FindString(device)
	if suffix == "" {
		return PartitionReference{}, fmt.Errorf("%s has no partition number", device)
	}
	num, err := strconv.Atoi(suffix)
	if err != nil || num < 1 {
		return PartitionReference{}, fmt.Errorf("%s has an invalid partition number %q", device, suffix)
	}

	disk := strings.TrimSuffix(device, suffix)
	if hasPartitionSeparator(disk) {
		if !strings.HasSuffix(disk, "p") {
			return PartitionReference{}, fmt.Errorf("%s is not a partition", device)
		}
		disk = strings.TrimSuffix(disk, "p")
	}
	if disk == "" || strings.HasSuffix(disk, "/") {
		return PartitionReference{}, fmt.Errorf("%s has no disk name", device)
	}

	return PartitionReference{Disk: disk, Partition: num}, nil
}

// ResolveDevice finds the disk and partition mounted at mountPoint.
//
// The first device-backed line of the mount table whose mount point is exactly
// mountPoint is used. If the same directory is mounted several times, the
// earliest mount in the table wins.
func ResolveDevice(mountPoint string, log logrus.FieldLogger) (PartitionReference, error) {
	target := filepath.Clean(mountPoint)

	lines, err := readLines(mountsPath)
	if err != nil {
		return PartitionReference{}, &ResolutionError{Op: "read mount table", Path: mountsPath, Err: err}
	}

	for _, line := range lines {
		record, ok := parseMountRecord(line)
		if !ok || !strings.HasPrefix(record.Source, devicePrefix) || record.MountPoint != target {
			continue
		}
		log.Infof("efi mount: %s", strings.TrimSpace(line))

		ref, err := SplitPartition(record.Source)
		if err != nil {
			return PartitionReference{}, &ResolutionError{Op: "resolve partition of", Path: target, Err: err}
		}
		return ref, nil
	}

	return PartitionReference{}, &ResolutionError{Op: "resolve device of", Path: target, Err: diagnoseMount(target)}
}

// diagnoseMount explains why target has no device-backed mount table entry.
func diagnoseMount(target string) error {
	mounts, err := mountinfoGetMounts(mountinfo.SingleEntryFilter(target))
	if err != nil || len(mounts) == 0 {
		return errNotMountPoint
	}
	return fmt.Errorf("mounted from %s, which is not a device node", mounts[0].Source)
}
