// SPDX-License-Identifier: BSD-3-Clause

package kvmsrv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidateFillsDefaults(t *testing.T) {
	cfg := &Config{}
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "kvm-gadget", cfg.USBGadgetName)
	assert.Equal(t, uint16(0x1d6b), cfg.USBVendorID)
	assert.Equal(t, uint16(0x0104), cfg.USBProductID)
	assert.Equal(t, "ip-kvm-go", cfg.USBManufacturer)
	assert.Equal(t, "Virtual KVM Device", cfg.USBProduct)
	assert.Equal(t, 5*time.Second, cfg.SendTimeout)
	assert.Equal(t, 10*time.Second, cfg.HIDDeviceWaitTimeout)
	assert.Equal(t, "kvm", cfg.NATSSubjectPrefix)
}

func TestConfigValidatePreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		USBGadgetName:     "custom-gadget",
		USBVendorID:       0x1234,
		NATSSubjectPrefix: "custom",
		SendTimeout:       2 * time.Second,
	}
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, "custom-gadget", cfg.USBGadgetName)
	assert.Equal(t, uint16(0x1234), cfg.USBVendorID)
	assert.Equal(t, "custom", cfg.NATSSubjectPrefix)
	assert.Equal(t, 2*time.Second, cfg.SendTimeout)
}

func TestConfigToUSBGadgetConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.USBSerialNumber = "serial-123"

	gc := cfg.ToUSBGadgetConfig()
	assert.Equal(t, cfg.USBGadgetName, gc.Name)
	assert.Equal(t, cfg.USBVendorID, gc.IDVendor)
	assert.Equal(t, cfg.USBProductID, gc.IDProduct)
	assert.Equal(t, "serial-123", gc.SerialNumber)
	assert.Equal(t, cfg.EnableMassStorage, gc.EnableMassStorage)
}

func TestNewAppliesOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.NATSSubjectPrefix = "custom"

	srv := New(WithName("kvm-test"), WithConfig(cfg))

	assert.Equal(t, "kvm-test", srv.Name())
	assert.Equal(t, "custom", srv.cfg.cfg.NATSSubjectPrefix)
}

func TestNewDefaults(t *testing.T) {
	srv := New()
	assert.Equal(t, "kvmsrv", srv.Name())
	assert.NotNil(t, srv.cfg.cfg)
}
