// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime/debug"
	"strconv"

	"github.com/ip-kvm-go/usbkvm/pkg/file"
)

var devMatchPattern = regexp.MustCompile(`^(\d+):(\d+)$`)

// FunctionHidOpts is one functions/hid.* entry: a HID function backed
// by a fixed report descriptor. Major/Minor are read-only — the
// kernel assigns them once the function is applied, and they name the
// /dev/hidgN character device this function surfaces as.
type FunctionHidOpts struct {
	Major int
	Minor int

	NoOutEndpoint uint8
	Protocol      uint8
	ReportDesc    []byte
	ReportLength  uint16
	Subclass      uint8
}

func (f *FunctionHidOpts) ApplyConfig(baseDir string) error {
	if err := file.CreateDir(baseDir); err != nil {
		return err
	}
	// Older kernels don't expose no_out_endpoint; ignore the failure.
	_ = file.WriteString(filepath.Join(baseDir, "no_out_endpoint"), strconv.Itoa(int(f.NoOutEndpoint)))
	if err := file.WriteString(filepath.Join(baseDir, "protocol"), strconv.Itoa(int(f.Protocol))); err != nil {
		return err
	}
	if err := file.WriteBytes(filepath.Join(baseDir, "report_desc"), f.ReportDesc); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "report_length"), strconv.Itoa(int(f.ReportLength))); err != nil {
		return err
	}
	if err := file.WriteString(filepath.Join(baseDir, "subclass"), strconv.Itoa(int(f.Subclass))); err != nil {
		return err
	}
	return f.FromConfig(baseDir)
}

func (f *FunctionHidOpts) FromConfig(baseDir string) error {
	if err := f.readDev(baseDir); err != nil {
		return err
	}
	noOut, err := file.ReadNum[uint8](filepath.Join(baseDir, "no_out_endpoint"))
	if err == nil {
		f.NoOutEndpoint = noOut
	}
	protocol, err := file.ReadNum[uint8](filepath.Join(baseDir, "protocol"))
	if err != nil {
		return err
	}
	reportDesc, err := file.ReadBytes(filepath.Join(baseDir, "report_desc"))
	if err != nil {
		return err
	}
	reportLength, err := file.ReadNum[uint16](filepath.Join(baseDir, "report_length"))
	if err != nil {
		return err
	}
	subclass, err := file.ReadNum[uint8](filepath.Join(baseDir, "subclass"))
	if err != nil {
		return err
	}
	f.Protocol, f.ReportDesc, f.ReportLength, f.Subclass = protocol, reportDesc, reportLength, subclass
	return nil
}

// Cleanup removes the function's ConfigFS directory.
func (f *FunctionHidOpts) Cleanup(baseDir string) error {
	if !file.IsDir(baseDir) {
		return nil
	}
	return file.RemoveDir(baseDir)
}

// DevPath returns the /dev/hidgN character device this function was
// assigned, derived from the minor number the kernel populated. Valid
// only after ApplyConfig/FromConfig has run.
func (f *FunctionHidOpts) DevPath() string {
	return fmt.Sprintf("/dev/hidg%d", f.Minor)
}

// readDev parses the kernel-populated "major:minor" dev file to
// recover which /dev/hidgN this function was assigned.
func (f *FunctionHidOpts) readDev(baseDir string) error {
	devPath := filepath.Join(baseDir, "dev")
	s, err := file.ReadString(devPath)
	if err != nil {
		return err
	}
	m := devMatchPattern.FindStringSubmatch(s)
	if m == nil {
		return &file.PathError{Kind: file.ErrDeserialize, Path: devPath, Cause: fmt.Errorf("cannot parse %q as major:minor", s), Stack: debug.Stack()}
	}
	major, err := strconv.Atoi(m[1])
	if err != nil {
		return &file.PathError{Kind: file.ErrDeserialize, Path: devPath, Cause: err, Stack: debug.Stack()}
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return &file.PathError{Kind: file.ErrDeserialize, Path: devPath, Cause: err, Stack: debug.Stack()}
	}
	f.Major, f.Minor = major, minor
	return nil
}

// NewKeyboardLegacyHidOpts returns the boot-protocol keyboard
// function: BIOS screens ignore report_desc entirely and always
// expect this exact 8-byte shape, so it is provisioned alongside the
// full keyboard function rather than instead of it.
func NewKeyboardLegacyHidOpts() *FunctionHidOpts {
	return &FunctionHidOpts{
		// Setting no_out_endpoint is required for the host to report
		// LED state back over this endpoint rather than a separate one.
		NoOutEndpoint: 1,
		Subclass:      1, // Boot Interface Subclass
		Protocol:      1, // Keyboard
		ReportLength:  KeyboardLegacyReportLength,
		ReportDesc:    KeyboardLegacyReportDescriptor,
	}
}

// NewKeyboardFullHidOpts returns the full-featured keyboard function
// (256-bit keyset, system-control usages, 256-bit LED mirror).
func NewKeyboardFullHidOpts() *FunctionHidOpts {
	return &FunctionHidOpts{
		NoOutEndpoint: 1,
		ReportLength:  KeyboardFullReportLength,
		ReportDesc:    KeyboardFullReportDescriptor,
	}
}

// NewMouseLegacyHidOpts returns the boot-protocol relative mouse
// function.
func NewMouseLegacyHidOpts() *FunctionHidOpts {
	return &FunctionHidOpts{
		NoOutEndpoint: 1,
		Subclass:      1, // Boot Interface Subclass
		Protocol:      2, // Mouse
		ReportLength:  MouseLegacyReportLength,
		ReportDesc:    MouseLegacyReportDescriptor,
	}
}

// NewCompositeHidOpts returns the multiplexed absolute-mouse +
// full-keyboard function carried over a single HID interface.
func NewCompositeHidOpts() *FunctionHidOpts {
	return &FunctionHidOpts{
		NoOutEndpoint: 1,
		ReportLength:  CompositeReportLength,
		ReportDesc:    CompositeReportDescriptor,
	}
}
