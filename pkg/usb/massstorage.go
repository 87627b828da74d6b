// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

import (
	"fmt"
	"path/filepath"

	"github.com/ip-kvm-go/usbkvm/pkg/file"
)

// lunNamePrefix names a functions/mass_storage.*/lun.N directory.
const lunNamePrefix = "lun"

// LunName returns the ConfigFS directory name for lunID.
func LunName(lunID uint8) string {
	return fmt.Sprintf("%s.%d", lunNamePrefix, lunID)
}

// FunctionMsgOpts is one functions/mass_storage.* entry: a USB mass
// storage function exposing one or more logical units. lun.0 always
// exists (ConfigFS creates it along with the function) and is never
// removed by Cleanup.
type FunctionMsgOpts struct {
	Stall bool
	Luns  map[string]*MsgLun
}

// NewFunctionMsgOpts returns a mass-storage function with a single
// default (empty, removable) lun.0.
func NewFunctionMsgOpts() *FunctionMsgOpts {
	return &FunctionMsgOpts{
		Luns: map[string]*MsgLun{
			LunName(0): NewMsgLun(),
		},
	}
}

func (m *FunctionMsgOpts) ApplyConfig(baseDir string) error {
	if err := file.CreateDir(baseDir); err != nil {
		return err
	}
	if err := file.WriteBool(filepath.Join(baseDir, "stall"), m.Stall); err != nil {
		return err
	}
	for name, lun := range m.Luns {
		if err := lun.ApplyConfig(filepath.Join(baseDir, name)); err != nil {
			return err
		}
	}
	return m.FromConfig(baseDir)
}

func (m *FunctionMsgOpts) FromConfig(baseDir string) error {
	stall, err := file.ReadBool(filepath.Join(baseDir, "stall"))
	if err != nil {
		return err
	}
	m.Stall = stall

	entries, err := file.ReadDirEntries(baseDir)
	if err != nil {
		return err
	}
	luns := map[string]*MsgLun{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		lun := &MsgLun{}
		if err := lun.FromConfig(filepath.Join(baseDir, entry.Name())); err != nil {
			return err
		}
		luns[entry.Name()] = lun
	}
	m.Luns = luns
	return nil
}

// Cleanup removes every LUN directory except lun.0 (ConfigFS refuses
// to let the function's first LUN be removed) and then the function's
// own directory.
func (m *FunctionMsgOpts) Cleanup(baseDir string) error {
	if !file.IsDir(baseDir) {
		return nil
	}
	entries, err := file.ReadDirEntries(baseDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() && entry.Name() != LunName(0) {
			if err := (&MsgLun{}).Cleanup(filepath.Join(baseDir, entry.Name())); err != nil {
				return err
			}
		}
	}
	return file.RemoveDir(baseDir)
}

// MsgLun is one mass_storage.*/lun.N entry: the backing file and its
// SCSI-visible properties.
type MsgLun struct {
	Cdrom         bool
	File          string
	InquiryString string
	Nofua         bool
	Removable     bool
	Ro            bool
}

// NewMsgLun returns an empty, removable, non-CD-ROM LUN — the
// ConfigFS default for a freshly created lun.N directory.
func NewMsgLun() *MsgLun {
	return &MsgLun{File: "\n", InquiryString: "\n", Removable: true}
}

// ApplyConfig writes forced_eject=1 before any other attribute on
// every call, not only when File actually changes: the kernel only
// signals a media-change event to the host when forced_eject
// transitions to 1, and the host must see that event whenever the
// backing file is about to change underneath it.
func (l *MsgLun) ApplyConfig(baseDir string) error {
	if !file.IsDir(baseDir) {
		if err := file.CreateDir(baseDir); err != nil {
			return err
		}
	}
	if err := file.WriteString(filepath.Join(baseDir, "forced_eject"), "1"); err != nil {
		return err
	}
	if err := file.WriteBool(filepath.Join(baseDir, "cdrom"), l.Cdrom); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "file"), l.File); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "inquiry_string"), l.InquiryString); err != nil {
		return err
	}
	if err := file.WriteBool(filepath.Join(baseDir, "nofua"), l.Nofua); err != nil {
		return err
	}
	if err := file.WriteBool(filepath.Join(baseDir, "removable"), l.Removable); err != nil {
		return err
	}
	return file.WriteBool(filepath.Join(baseDir, "ro"), l.Ro)
}

func (l *MsgLun) FromConfig(baseDir string) error {
	cdrom, err := file.ReadBool(filepath.Join(baseDir, "cdrom"))
	if err != nil {
		return err
	}
	f, err := file.ReadString(filepath.Join(baseDir, "file"))
	if err != nil {
		return err
	}
	inquiry, err := file.ReadString(filepath.Join(baseDir, "inquiry_string"))
	if err != nil {
		return err
	}
	nofua, err := file.ReadBool(filepath.Join(baseDir, "nofua"))
	if err != nil {
		return err
	}
	removable, err := file.ReadBool(filepath.Join(baseDir, "removable"))
	if err != nil {
		return err
	}
	ro, err := file.ReadBool(filepath.Join(baseDir, "ro"))
	if err != nil {
		return err
	}
	l.Cdrom, l.File, l.InquiryString, l.Nofua, l.Removable, l.Ro = cdrom, f, inquiry, nofua, removable, ro
	return nil
}

func (l *MsgLun) Cleanup(baseDir string) error {
	if !file.IsDir(baseDir) {
		return nil
	}
	return file.RemoveDir(baseDir)
}
