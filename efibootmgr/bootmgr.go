// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package efibootmgr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/canonical/go-efilib"
	"github.com/sirupsen/logrus"

	"github.com/canonical/efibootgen/efivars"
)

// BootEntryVariable defines a boot entry variable
type BootEntryVariable struct {
	BootNumber int                    // number of the Boot variable, for example, for Boot0004 this is 4
	Data       []byte                 // the data of the variable
	Attributes efi.VariableAttributes // any attributes set on the variable
	LoadOption *efi.LoadOption        // the data of the variable parsed as a load option, nil if invalid
}

// Creator creates boot entries.
type Creator interface {
	Create(entry NewEntry) error
}

// BootManager manages the boot device selection menu entries (Boot0000...BootFFFF)
// by accessing the variables directly.
//
// Generating a device path for a new entry needs the partition table of the
// disk, so creation is delegated to another Creator, usually a Tool.
type BootManager struct {
	efivars EFIVariables
	creator Creator
	log     logrus.FieldLogger
}

var variablesSupported = efivars.VariablesSupported

// NewBootManager returns a BootManager accessing vars, and creating entries with creator.
func NewBootManager(vars EFIVariables, creator Creator, log logrus.FieldLogger) *BootManager {
	return &BootManager{efivars: vars, creator: creator, log: log}
}

// NewBootManagerFromSystem returns a BootManager accessing the variables of the
// running system.
func NewBootManagerFromSystem(creator Creator, log logrus.FieldLogger) (*BootManager, error) {
	if err := variablesSupported(efivars.EfivarfsPath); err != nil {
		return nil, fmt.Errorf("variables not supported: %w", err)
	}
	return NewBootManager(RealEFIVariables{}, creator, log), nil
}

func (bm *BootManager) readEntries() ([]BootEntryVariable, error) {
	names, err := GetVariableNames(bm.efivars, efi.GlobalVariable)
	if err != nil {
		return nil, fmt.Errorf("cannot obtain list of global variables: %w", err)
	}

	var entries []BootEntryVariable
	for _, name := range names {
		var entry BootEntryVariable
		if parsed, err := fmt.Sscanf(name, "Boot%04X", &entry.BootNumber); len(name) != 8 || parsed != 1 || err != nil {
			continue
		}
		entry.Data, entry.Attributes, err = bm.efivars.GetVariable(efi.GlobalVariable, name)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", name, err)
		}
		entry.LoadOption, err = efi.ReadLoadOption(bytes.NewReader(entry.Data))
		if err != nil {
			bm.log.Errorf("Invalid boot entry %s: %v", name, err)
			entry.LoadOption = nil
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].BootNumber < entries[j].BootNumber })
	return entries, nil
}

func (bm *BootManager) readBootOrder() (order []int, attrs efi.VariableAttributes, err error) {
	data, attrs, err := bm.efivars.GetVariable(efi.GlobalVariable, "BootOrder")
	if err != nil {
		return nil, 0, err
	}
	order = make([]int, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		order[i/2] = int(binary.LittleEndian.Uint16(data[i : i+2]))
	}
	return order, attrs, nil
}

func formatBootOrder(order []int) string {
	nums := make([]string, len(order))
	for i, num := range order {
		nums[i] = fmt.Sprintf("%04X", num)
	}
	return strings.Join(nums, ",")
}

// FormatEntry renders a boot entry the way efibootmgr lists it.
func FormatEntry(entry BootEntryVariable) string {
	lo := entry.LoadOption
	active := " "
	if lo.Attributes&efi.LoadOptionActive != 0 {
		active = "*"
	}
	line := fmt.Sprintf("Boot%04X%s %s", entry.BootNumber, active, lo.Description)
	if len(lo.FilePath) > 0 {
		line += "\t" + lo.FilePath.String()
	}
	if args := efivars.LoadOptionArgumentToUTF8(lo.OptionalData); args != "" {
		line += " " + args
	}
	return line
}

// List returns a listing of the boot entries in the format used by efibootmgr.
// Entries that are not valid load options are logged and left out.
func (bm *BootManager) List() ([]string, error) {
	var lines []string

	order, _, err := bm.readBootOrder()
	switch {
	case err == nil:
		lines = append(lines, "BootOrder: "+formatBootOrder(order))
	case errors.Is(err, efi.ErrVarNotExist):
	default:
		return nil, &GatewayError{Command: []string{"read", "BootOrder"}, Err: err}
	}

	entries, err := bm.readEntries()
	if err != nil {
		return nil, &GatewayError{Command: []string{"list", efivars.EfivarfsPath}, Err: err}
	}
	for _, entry := range entries {
		if entry.LoadOption == nil {
			continue
		}
		lines = append(lines, FormatEntry(entry))
	}
	return lines, nil
}

// Create adds a new boot entry using the configured Creator.
func (bm *BootManager) Create(entry NewEntry) error {
	return bm.creator.Create(entry)
}

// Delete deletes the entry Boot<bootNum> and removes it from BootOrder.
func (bm *BootManager) Delete(bootNum int) error {
	variable := fmt.Sprintf("Boot%04X", bootNum)
	command := []string{"delete", variable}
	bm.log.Infof("deleting %s", variable)

	if err := DelVariable(bm.efivars, efi.GlobalVariable, variable); err != nil {
		if errors.Is(err, efi.ErrVarNotExist) {
			err = fmt.Errorf("tried deleting a non-existing variable %s: %w", variable, err)
		}
		return &GatewayError{Command: command, Err: err}
	}

	order, attrs, err := bm.readBootOrder()
	if errors.Is(err, efi.ErrVarNotExist) {
		return nil
	}
	if err != nil {
		return &GatewayError{Command: command, Err: fmt.Errorf("cannot read BootOrder: %w", err)}
	}

	var output []byte
	for _, num := range order {
		if num == bootNum {
			continue
		}
		var numBytes [2]byte
		binary.LittleEndian.PutUint16(numBytes[0:], uint16(num))
		output = append(output, numBytes[0], numBytes[1])
	}
	if len(output) == len(order)*2 {
		return nil
	}

	if err := bm.efivars.SetVariable(efi.GlobalVariable, "BootOrder", output, attrs); err != nil {
		return &GatewayError{Command: command, Err: fmt.Errorf("cannot update BootOrder: %w", err)}
	}
	return nil
}
