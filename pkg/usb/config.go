// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

// Function and configuration names used to assemble a GadgetInfo from
// a GadgetConfig. These are ConfigFS directory names, not free-form
// identifiers — each must be unique among its siblings.
const (
	FunctionNameKeyboardFull   = "hid.usb0"
	FunctionNameKeyboardLegacy = "hid.usb1"
	FunctionNameMouseLegacy    = "hid.usb2"
	FunctionNameComposite      = "hid.usb3"
	FunctionNameMassStorage    = "mass_storage.usb0"

	ConfigurationName = "c.1"
)

// GadgetConfig is the caller-facing description of the gadget this
// package provisions: a composite keyboard+mouse+optional-mass-storage
// USB device. Build assembles it into a GadgetInfo ready for
// ApplyConfig.
type GadgetConfig struct {
	Name string

	IDVendor     uint16
	IDProduct    uint16
	Manufacturer string
	Product      string
	SerialNumber string

	// MaxPower is in 2mA units, matching the ConfigFS MaxPower attribute.
	MaxPower uint16

	EnableMassStorage bool
}

// DefaultGadgetConfig returns the vendor/product identity and power
// budget this gadget ships with: Linux Foundation's generic vendor ID
// paired with the "Multifunction Composite Gadget" product ID, and a
// 500mA power budget (250 * 2mA).
func DefaultGadgetConfig() *GadgetConfig {
	return &GadgetConfig{
		Name:              "kvm-gadget",
		IDVendor:          0x1d6b,
		IDProduct:         0x0104,
		Manufacturer:      "ip-kvm-go",
		Product:           "Virtual KVM Device",
		MaxPower:          250,
		EnableMassStorage: true,
	}
}

// Build assembles cfg into a GadgetInfo: one composite HID function
// (absolute mouse + full keyboard, report-ID multiplexed) for the
// primary KVM client, a standalone full-featured keyboard function for
// direct host drivers that don't understand the multiplexed reports,
// one legacy boot-protocol keyboard function, one legacy boot-protocol
// mouse function, optionally one mass-storage function, and a single
// bus-powered configuration bundling all of them.
func (cfg *GadgetConfig) Build() *GadgetInfo {
	g := NewGadgetInfo()
	g.IDVendor = cfg.IDVendor
	g.IDProduct = cfg.IDProduct
	g.BDeviceClass = 0xef   // Miscellaneous Device
	g.BDeviceSubClass = 0x02 // Common Class
	g.BDeviceProtocol = 0x01 // Interface Association Descriptor

	g.Strings[languageCodeEnglish] = &GadgetStrings{
		Manufacturer: cfg.Manufacturer,
		Product:      cfg.Product,
		SerialNumber: cfg.SerialNumber,
	}

	g.Functions[FunctionNameComposite] = NewCompositeHidOpts()
	g.Functions[FunctionNameKeyboardFull] = NewKeyboardFullHidOpts()
	g.Functions[FunctionNameKeyboardLegacy] = NewKeyboardLegacyHidOpts()
	g.Functions[FunctionNameMouseLegacy] = NewMouseLegacyHidOpts()

	functionNames := []string{FunctionNameComposite, FunctionNameKeyboardFull, FunctionNameKeyboardLegacy, FunctionNameMouseLegacy}

	if cfg.EnableMassStorage {
		g.Functions[FunctionNameMassStorage] = NewFunctionMsgOpts()
		functionNames = append(functionNames, FunctionNameMassStorage)
	}

	usbConfig := NewUsbConfiguration()
	usbConfig.MaxPower = cfg.MaxPower
	usbConfig.Functions = functionNames
	usbConfig.Strings[languageCodeEnglish] = &GadgetConfigName{Configuration: "Config 1: KVM"}
	g.Configs[ConfigurationName] = usbConfig

	return g
}

// GadgetStatus reports the runtime state of a provisioned gadget.
type GadgetStatus struct {
	Name  string
	Bound bool
	UDC   string
	State string
}
