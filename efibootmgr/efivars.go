// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

package efibootmgr

import (
	"github.com/canonical/go-efilib"
)

// EFIVariables abstracts away the host-specific bits of variable access
type EFIVariables interface {
	ListVariables() ([]efi.VariableDescriptor, error)
	GetVariable(guid efi.GUID, name string) (data []byte, attrs efi.VariableAttributes, err error)
	SetVariable(guid efi.GUID, name string, data []byte, attrs efi.VariableAttributes) error
}

// RealEFIVariables provides the real implementation of efivars
type RealEFIVariables struct{}

// ListVariables proxy
func (RealEFIVariables) ListVariables() ([]efi.VariableDescriptor, error) {
	return efi.ListVariables(efi.DefaultVarContext)
}

// GetVariable proxy
func (RealEFIVariables) GetVariable(guid efi.GUID, name string) (data []byte, attrs efi.VariableAttributes, err error) {
	return efi.ReadVariable(efi.DefaultVarContext, name, guid)
}

// SetVariable proxy
func (RealEFIVariables) SetVariable(guid efi.GUID, name string, data []byte, attrs efi.VariableAttributes) error {
	return efi.WriteVariable(efi.DefaultVarContext, name, guid, attrs, data)
}

// GetVariableNames returns the names of every variable with the specified GUID.
func GetVariableNames(vars EFIVariables, filterGUID efi.GUID) (names []string, err error) {
	descs, err := vars.ListVariables()
	if err != nil {
		return nil, err
	}
	for _, entry := range descs {
		if entry.GUID != filterGUID {
			continue
		}
		names = append(names, entry.Name)
	}
	return names, nil
}

// DelVariable deletes the non-authenticated variable with the specified name.
func DelVariable(vars EFIVariables, guid efi.GUID, name string) error {
	_, attrs, err := vars.GetVariable(guid, name)
	if err != nil {
		return err
	}
	return vars.SetVariable(guid, name, nil, attrs)
}
