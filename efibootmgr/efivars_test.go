// This file is part of efibootgen
// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: GPL-3.0-only

// This file does not contain actual tests, but contains mock implementations of EFIVariables

package efibootmgr

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"

	"github.com/canonical/go-efilib"
	"golang.org/x/text/encoding/unicode"
)

var _ EFIVariables = RealEFIVariables{}

type NoEFIVariables struct{}

func (NoEFIVariables) ListVariables() ([]efi.VariableDescriptor, error) {
	return nil, efi.ErrVarsUnavailable
}

func (NoEFIVariables) GetVariable(guid efi.GUID, name string) ([]byte, efi.VariableAttributes, error) {
	return nil, 0, efi.ErrVarsUnavailable
}

func (NoEFIVariables) SetVariable(guid efi.GUID, name string, data []byte, attrs efi.VariableAttributes) error {
	return efi.ErrVarsUnavailable
}

type mockEFIVariable struct {
	data  []byte
	attrs efi.VariableAttributes
}

type MockEFIVariables struct {
	store map[efi.VariableDescriptor]mockEFIVariable
}

func (m MockEFIVariables) ListVariables() (out []efi.VariableDescriptor, err error) {
	for k := range m.store {
		out = append(out, k)
	}
	return out, nil
}

func (m MockEFIVariables) GetVariable(guid efi.GUID, name string) (data []byte, attrs efi.VariableAttributes, err error) {
	out, ok := m.store[efi.VariableDescriptor{Name: name, GUID: guid}]
	if !ok {
		return nil, 0, efi.ErrVarNotExist
	}
	return out.data, out.attrs, nil
}

func (m *MockEFIVariables) SetVariable(guid efi.GUID, name string, data []byte, attrs efi.VariableAttributes) error {
	if m.store == nil {
		m.store = make(map[efi.VariableDescriptor]mockEFIVariable)
	}
	if len(data) == 0 {
		delete(m.store, efi.VariableDescriptor{Name: name, GUID: guid})
	} else {
		m.store[efi.VariableDescriptor{Name: name, GUID: guid}] = mockEFIVariable{data, attrs}
	}
	return nil
}

const defaultBootEntryAttrs = efi.AttributeNonVolatile | efi.AttributeBootserviceAccess | efi.AttributeRuntimeAccess

// endOfPath is a device path consisting only of the end of entire path node
var endOfPath = []byte{0x7f, 0xff, 0x04, 0x00}

// newLoadOptionData encodes an active load option with an empty device path
func newLoadOptionData(desc string, args string) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(efi.LoadOptionActive))
	binary.Write(&buf, binary.LittleEndian, uint16(len(endOfPath)))
	binary.Write(&buf, binary.LittleEndian, append(utf16.Encode([]rune(desc)), 0))
	buf.Write(endOfPath)
	if args != "" {
		data, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(args))
		if err != nil {
			panic(err)
		}
		buf.Write(data)
	}
	return buf.Bytes()
}

func bootOrderData(nums ...uint16) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, nums)
	return buf.Bytes()
}

var UsbrBootCdrom = []byte{9, 0, 0, 0, 28, 0, 85, 0, 83, 0, 66, 0, 82, 0, 32, 0, 66, 0, 79, 0, 79, 0, 84, 0, 32, 0, 67, 0, 68, 0, 82, 0, 79, 0, 77, 0, 0, 0, 2, 1, 12, 0, 208, 65, 3, 10, 0, 0, 0, 0, 1, 1, 6, 0, 0, 20, 3, 5, 6, 0, 11, 1, 127, 255, 4, 0}
