// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package generator

import (
	"errors"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/spf13/afero"
	"gopkg.in/check.v1"

	"github.com/canonical/efibootgen/efibootmgr"
)

type runSuite struct {
	memFs   afero.Fs
	gateway *fakeGateway
	restore func()
}

var _ = check.Suite(&runSuite{})

func (s *runSuite) SetUpTest(c *check.C) {
	s.memFs = afero.NewMemMapFs()
	orig := appFs
	appFs = MapFS{s.memFs}
	s.restore = func() { appFs = orig }

	s.gateway = newFakeGateway()
	s.gateway.add(0, "Gentoo Efistub 6.6.0-gentoo")

	s.writeFile(c, mountsPath, "/dev/nvme0n1p3 / ext4 rw 0 0\n/dev/nvme0n1p2 /boot vfat rw 0 0\n")
	s.writeFile(c, cmdlinePath, "BOOT_IMAGE=/vmlinuz root=LABEL=rootfs initrd=\\initramfs-6.6.0-gentoo.img rw\n")
	s.writeFile(c, "/boot/vmlinuz-6.6.1-gentoo", "6.6.1")
	s.writeFile(c, "/boot/initramfs-6.6.1-gentoo.img", "6.6.1")
	s.writeFile(c, "/boot/vmlinuz-6.6.2-gentoo", "6.6.2")
}

func (s *runSuite) TearDownTest(c *check.C) {
	s.restore()
}

func (s *runSuite) writeFile(c *check.C, path, content string) {
	c.Assert(afero.WriteFile(s.memFs, path, []byte(content), 0644), check.IsNil)
}

func (s *runSuite) TestRun(c *check.C) {
	log, _ := logtest.NewNullLogger()

	result, err := Run(Options{}, s.gateway, log)
	c.Assert(err, check.IsNil)

	c.Check(result.Created, check.DeepEquals, []string{"Gentoo Efistub 6.6.1-gentoo"})
	c.Check(result.Deleted, check.DeepEquals, []int{0})
	c.Check(s.gateway.entries, check.HasLen, 1)
	c.Check(s.gateway.entries[1], check.DeepEquals, efibootmgr.NewEntry{
		Disk:      "/dev/nvme0n1",
		Partition: 2,
		Label:     "Gentoo Efistub 6.6.1-gentoo",
		Loader:    "/vmlinuz-6.6.1-gentoo",
		Arguments: "BOOT_IMAGE=/vmlinuz root=LABEL=rootfs rw initrd=\\initramfs-6.6.1-gentoo.img",
	})
}

func (s *runSuite) TestRunCmdlineOverride(c *check.C) {
	log, _ := logtest.NewNullLogger()
	c.Assert(s.memFs.Remove(cmdlinePath), check.IsNil)

	_, err := Run(Options{EntryCmdline: "root=/dev/nvme0n1p3 quiet", EntryPrefix: "Custom"}, s.gateway, log)
	c.Assert(err, check.IsNil)

	c.Check(s.gateway.labels("Custom"), check.DeepEquals, []string{"Custom 6.6.1-gentoo"})
	c.Check(s.gateway.entries[1].Arguments, check.Equals, "root=/dev/nvme0n1p3 quiet initrd=\\initramfs-6.6.1-gentoo.img")
	// Entries with another prefix are not ours
	c.Check(s.gateway.entries[0].Label, check.Equals, "Gentoo Efistub 6.6.0-gentoo")
}

func (s *runSuite) TestRunResolutionErrorBeforeGateway(c *check.C) {
	log, _ := logtest.NewNullLogger()

	_, err := Run(Options{EFIDir: "/efi"}, s.gateway, log)
	var resErr *ResolutionError
	c.Assert(errors.As(err, &resErr), check.Equals, true)
	c.Check(s.gateway.calls, check.HasLen, 0)
}

func (s *runSuite) TestRunNoValidKernel(c *check.C) {
	log, _ := logtest.NewNullLogger()
	c.Assert(s.memFs.Remove("/boot/initramfs-6.6.1-gentoo.img"), check.IsNil)

	_, err := Run(Options{}, s.gateway, log)
	c.Assert(err, check.Equals, ErrNoKernels)
	c.Check(s.gateway.calls, check.HasLen, 0)
	c.Check(s.gateway.entries[0].Label, check.Equals, "Gentoo Efistub 6.6.0-gentoo")
}

func (s *runSuite) TestRunDryRun(c *check.C) {
	log, _ := logtest.NewNullLogger()

	result, err := Run(Options{DryRun: true}, s.gateway, log)
	c.Assert(err, check.IsNil)
	c.Check(result.Plan.Delete, check.DeepEquals, []int{0})
	c.Check(s.gateway.calls, check.DeepEquals, []string{"list"})
}
