// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

// Package usb implements a composite USB HID gadget over Linux
// ConfigFS: a full-featured keyboard, a boot-protocol keyboard and
// mouse for BIOS-era compatibility, and a single composite endpoint
// multiplexing absolute-mouse and full-keyboard reports by report ID.
// An optional mass-storage function is supported for virtual-media use
// cases.
//
// # Provisioning
//
// A gadget is described by a GadgetConfig, turned into a GadgetInfo
// tree, applied to ConfigFS, and torn down again on shutdown:
//
//	cfg := usb.DefaultGadgetConfig()
//	cfg.SerialNumber = mySerial
//
//	udc, err := usb.FindAvailableUDC()
//	if err != nil {
//		// no UDC under /sys/class/udc
//	}
//
//	gadget := cfg.Build()
//	gadget.UDC = udc
//
//	baseDir := usb.GadgetDir(cfg.Name)
//	if err := gadget.ApplyConfig(baseDir); err != nil {
//		_ = gadget.Cleanup(baseDir)
//		// handle error
//	}
//	defer gadget.Cleanup(baseDir)
//
// ApplyConfig writes every ConfigFS attribute, function and
// configuration in dependency order and binds the gadget to UDC last,
// since binding is what makes the kernel start creating /dev/hidgN
// nodes. Cleanup unbinds first, then removes configurations, functions,
// the OS descriptor settings and strings.
//
// # Device Pipes
//
// Once a gadget is bound, WaitForHidDevice polls for each function's
// /dev/hidgN node to appear, and KeyboardDevice, MouseDevice and
// CompositeDevice open them:
//
//	kbd, err := usb.NewKeyboardDevice(fullPath, legacyPath)
//	mouse, err := usb.NewMouseDevice(legacyMousePath)
//	composite, err := usb.NewCompositeDevice(compositePath, kbd, mouse)
//
// Keyboard and mouse state (which keys/buttons are down) lives on
// these types; callers mutate it with SetKey/SetSysControlKey/
// SetButton and flush it to the wire with Send/SendLegacy or, for the
// composite endpoint, PublishKeyboard/PublishMouse followed by
// CompositeDevice.SendLoop.
//
// Inbound LED state (the host's keyboard-LED output report) is folded
// back into KeyboardDevice by Recv/RecvLegacy/ApplyInboundKeyboardReport
// and exposed to subscribers through a Watch[[0x20]byte] obtained from
// SubscribeLed — a single-slot, last-value-wins channel, not a queue.
//
// # Platform Requirements
//
// This package requires:
//   - Linux with ConfigFS support (CONFIG_CONFIGFS_FS)
//   - USB gadget support (CONFIG_USB_GADGET)
//   - HID gadget support (CONFIG_USB_G_HID)
//   - Mass storage gadget support (CONFIG_USB_MASS_STORAGE), if enabled
//   - Appropriate permissions for /sys/kernel/config and /dev/hidgN
package usb
