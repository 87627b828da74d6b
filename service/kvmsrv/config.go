// SPDX-License-Identifier: BSD-3-Clause

package kvmsrv

import (
	"time"

	"github.com/ip-kvm-go/usbkvm/pkg/usb"
)

// Config represents the configuration for the KVM HID core service.
type Config struct {
	// USBGadgetName is the ConfigFS directory name for the gadget.
	USBGadgetName string

	// USBVendorID and USBProductID are the gadget's idVendor/idProduct.
	USBVendorID  uint16
	USBProductID uint16

	// USBManufacturer and USBProduct are the gadget's string descriptors.
	USBManufacturer string
	USBProduct      string

	// USBSerialNumber is the gadget's serial number string descriptor.
	// Left empty, a serial number is generated and persisted on first
	// run (see pkg/id.GetOrCreatePersistentID).
	USBSerialNumber string

	// USBSerialPersistPath is where the generated serial number is
	// persisted across restarts when USBSerialNumber is left empty.
	USBSerialPersistPath string

	// EnableMassStorage enables the mass-storage function.
	EnableMassStorage bool

	// SendTimeout bounds every keyboard/mouse report send: if the
	// write hasn't completed by this deadline, the caller is told to
	// continue rather than block on a host that stopped listening.
	SendTimeout time.Duration

	// HIDDeviceWaitTimeout bounds the startup barrier that polls for
	// /dev/hidgN nodes to appear after binding to a UDC.
	HIDDeviceWaitTimeout time.Duration

	// NATSSubjectPrefix namespaces this service's micro endpoints,
	// e.g. "kvm" yields "kvm.keyboard.set_key".
	NATSSubjectPrefix string
}

type config struct {
	name string
	cfg  *Config
}

type Option interface {
	apply(*config)
}

type nameOption struct {
	name string
}

func (o *nameOption) apply(c *config) {
	c.name = o.name
}

func WithName(name string) Option {
	return &nameOption{name: name}
}

type configOption struct {
	cfg *Config
}

func (o *configOption) apply(c *config) {
	c.cfg = o.cfg
}

func WithConfig(cfg *Config) Option {
	return &configOption{cfg: cfg}
}

// DefaultConfig returns the default KVM HID core configuration.
func DefaultConfig() *Config {
	return &Config{
		USBGadgetName:        "kvm-gadget",
		USBVendorID:          0x1d6b, // Linux Foundation
		USBProductID:         0x0104, // Multifunction Composite Gadget
		USBManufacturer:      "ip-kvm-go",
		USBProduct:           "Virtual KVM Device",
		USBSerialPersistPath: "/var/lib/usbkvm/serial",
		EnableMassStorage:    true,
		SendTimeout:          5 * time.Second,
		HIDDeviceWaitTimeout: 10 * time.Second,
		NATSSubjectPrefix:    "kvm",
	}
}

// Validate validates the configuration and fills in defaults where
// appropriate.
func (c *Config) Validate() error {
	if c.USBGadgetName == "" {
		c.USBGadgetName = "kvm-gadget"
	}

	if c.USBVendorID == 0 {
		c.USBVendorID = 0x1d6b
	}

	if c.USBProductID == 0 {
		c.USBProductID = 0x0104
	}

	if c.USBManufacturer == "" {
		c.USBManufacturer = "ip-kvm-go"
	}

	if c.USBProduct == "" {
		c.USBProduct = "Virtual KVM Device"
	}

	if c.SendTimeout <= 0 {
		c.SendTimeout = 5 * time.Second
	}

	if c.HIDDeviceWaitTimeout <= 0 {
		c.HIDDeviceWaitTimeout = 10 * time.Second
	}

	if c.NATSSubjectPrefix == "" {
		c.NATSSubjectPrefix = "kvm"
	}

	return nil
}

// ToUSBGadgetConfig converts the service config to a USB gadget config.
func (c *Config) ToUSBGadgetConfig() *usb.GadgetConfig {
	return &usb.GadgetConfig{
		Name:              c.USBGadgetName,
		IDVendor:          c.USBVendorID,
		IDProduct:         c.USBProductID,
		Manufacturer:      c.USBManufacturer,
		Product:           c.USBProduct,
		SerialNumber:      c.USBSerialNumber,
		MaxPower:          250, // 500mA
		EnableMassStorage: c.EnableMassStorage,
	}
}
