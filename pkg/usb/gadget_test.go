// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ip-kvm-go/usbkvm/pkg/file"
	"github.com/stretchr/testify/assert"
)

func TestGadgetConfigBuildAssemblesExpectedFunctions(t *testing.T) {
	cfg := DefaultGadgetConfig()
	cfg.SerialNumber = "test-serial"

	g := cfg.Build()

	assert.Contains(t, g.Functions, FunctionNameComposite)
	assert.Contains(t, g.Functions, FunctionNameKeyboardFull)
	assert.Contains(t, g.Functions, FunctionNameKeyboardLegacy)
	assert.Contains(t, g.Functions, FunctionNameMouseLegacy)
	assert.Contains(t, g.Functions, FunctionNameMassStorage)

	cfgEntry, ok := g.Configs[ConfigurationName]
	assert.True(t, ok)
	assert.ElementsMatch(t, []string{
		FunctionNameComposite, FunctionNameKeyboardFull,
		FunctionNameKeyboardLegacy, FunctionNameMouseLegacy,
		FunctionNameMassStorage,
	}, cfgEntry.Functions)

	strs, ok := g.Strings[languageCodeEnglish]
	assert.True(t, ok)
	assert.Equal(t, "test-serial", strs.SerialNumber)
}

func TestGadgetConfigBuildWithoutMassStorage(t *testing.T) {
	cfg := DefaultGadgetConfig()
	cfg.EnableMassStorage = false

	g := cfg.Build()

	assert.NotContains(t, g.Functions, FunctionNameMassStorage)
	assert.NotContains(t, g.Configs[ConfigurationName].Functions, FunctionNameMassStorage)
}

// TestGadgetInfoCleanupOnAbsentBaseIsNoOp covers the lifecycle
// idempotency scenario: calling Cleanup a second time on a directory
// that no longer exists must succeed silently rather than error.
func TestGadgetInfoCleanupOnAbsentBaseIsNoOp(t *testing.T) {
	g := NewGadgetInfo()
	missing := filepath.Join(t.TempDir(), "never-created")

	assert.NoError(t, g.Cleanup(missing))
	assert.NoError(t, g.Cleanup(missing), "cleanup must be idempotent on an absent directory")
}

func TestFunctionHidOptsCleanupIsIdempotent(t *testing.T) {
	base := filepath.Join(t.TempDir(), "hid.usb0")
	assert.NoError(t, file.CreateDir(base))

	f := &FunctionHidOpts{}
	assert.NoError(t, f.Cleanup(base))
	assert.False(t, file.IsDir(base))

	// Cleanup again now that the directory is gone.
	assert.NoError(t, f.Cleanup(base))
}

func TestGadgetStringsApplyAndReadBack(t *testing.T) {
	base := filepath.Join(t.TempDir(), "0x409")

	s := NewGadgetStrings()
	s.Manufacturer = "ip-kvm-go"
	s.Product = "Virtual KVM Device"
	s.SerialNumber = "abc123"

	assert.NoError(t, s.ApplyConfig(base))

	var reread GadgetStrings
	assert.NoError(t, reread.FromConfig(base))
	assert.Equal(t, *s, reread)
}

// TestGadgetStringsCleanupIsIdempotent exercises Cleanup directly
// against a bare, attribute-free directory: on real ConfigFS the
// kernel lets an rmdir succeed even with mandatory attribute files
// still present underneath, a guarantee a plain filesystem directory
// does not give, so this only checks the directory-presence gate and
// its idempotency, not a Cleanup-after-ApplyConfig round trip.
func TestGadgetStringsCleanupIsIdempotent(t *testing.T) {
	base := filepath.Join(t.TempDir(), "0x409")
	assert.NoError(t, file.CreateDir(base))

	s := &GadgetStrings{}
	assert.NoError(t, s.Cleanup(base))
	assert.False(t, file.IsDir(base))
	assert.NoError(t, s.Cleanup(base), "cleanup must be idempotent")
}

// TestUsbConfigurationCleanupRemovesSymlinks covers the function-symlink
// half of UsbConfiguration.Cleanup. The final baseDir removal itself
// relies on ConfigFS's kernel-side composite deletion of the always-present
// "strings" attribute group, which a plain filesystem does not
// replicate, so only the symlink teardown is asserted here.
func TestUsbConfigurationCleanupRemovesSymlinks(t *testing.T) {
	root := t.TempDir()
	functionsDir := filepath.Join(root, "functions")
	assert.NoError(t, file.CreateDir(functionsDir))
	assert.NoError(t, file.CreateDir(filepath.Join(functionsDir, "hid.usb0")))

	configDir := filepath.Join(root, "configs", "c.1")
	assert.NoError(t, os.MkdirAll(filepath.Dir(configDir), 0o755))
	assert.NoError(t, file.CreateDir(configDir))
	linkPath := filepath.Join(configDir, "hid.usb0")
	assert.NoError(t, file.Symlink(filepath.Join("..", "..", "functions", "hid.usb0"), linkPath))
	assert.NoError(t, file.CreateDir(filepath.Join(configDir, "strings")))

	cfg := &UsbConfiguration{}
	_ = cfg.Cleanup(configDir)

	_, statErr := os.Lstat(linkPath)
	assert.True(t, os.IsNotExist(statErr), "function symlink should have been removed")
}

func TestUsbConfigurationCleanupOnAbsentBaseIsNoOp(t *testing.T) {
	cfg := &UsbConfiguration{}
	assert.NoError(t, cfg.Cleanup(filepath.Join(t.TempDir(), "never-created")))
}

func TestOsDescCleanupDisablesUse(t *testing.T) {
	base := t.TempDir()
	assert.NoError(t, file.WriteBool(filepath.Join(base, "use"), true))

	o := &OsDesc{}
	assert.NoError(t, o.Cleanup(base))

	got, err := file.ReadBool(filepath.Join(base, "use"))
	assert.NoError(t, err)
	assert.False(t, got)
}

// GetGadgetStatus and GadgetDir resolve against the real ConfigFS
// mount point (/sys/kernel/config/usb_gadget), which is not writable
// from a unit test sandbox; only the not-found path is exercised here.
func TestGetGadgetStatusNotFound(t *testing.T) {
	_, err := GetGadgetStatus("does-not-exist-gadget")
	assert.ErrorIs(t, err, ErrGadgetNotFound)
}
