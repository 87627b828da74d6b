// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

// Report lengths, in bytes, for each HID variant this package emits.
// These must match the REPORT_COUNT fields baked into the descriptors
// below — the kernel HID gadget function rejects reports of the wrong
// size.
const (
	KeyboardLegacyReportLength = 8
	KeyboardFullReportLength   = 0x22
	MouseLegacyReportLength    = 4
	MouseAbsoluteReportLength  = 6
	CompositeReportLength      = 0x23

	// CompositeRecvLength is the size of an inbound (OUT) report on the
	// composite endpoint. It is deliberately distinct from
	// CompositeReportLength: the host only ever sends back the keyboard
	// LED output report (report ID plus 0x20 LED bytes), which is two
	// bytes shorter than an outbound keyboard frame (report ID plus the
	// 0x22-byte key and system-control report).
	CompositeRecvLength = 0x21

	// CompositeReportIDMouse and CompositeReportIDKeyboard are the
	// leading report-ID byte that demultiplexes the composite
	// interface's single endpoint into the two logical reports it
	// carries.
	CompositeReportIDMouse    = 0x01
	CompositeReportIDKeyboard = 0x02
)

// KeyboardLegacyReportDescriptor is the 8-byte boot-protocol keyboard
// report descriptor: eight constant input bytes (REPORT_SIZE 8 x
// REPORT_COUNT 8) giving the fixed boot-protocol input shape, into which
// KeyboardDevice.SendLegacy writes the 8-byte boot report on this same
// endpoint, then a 5-bit LED output (Num/Caps/Scroll/Compose/Kana)
// padded to a byte.
var KeyboardLegacyReportDescriptor = []byte{
	0x05, 0x01, // USAGE_PAGE (Generic Desktop)
	0x09, 0x06, // USAGE (Keyboard)
	0xa1, 0x01, // COLLECTION (Application)

	0x75, 0x08, //   REPORT_SIZE (8)
	0x95, 0x08, //   REPORT_COUNT (8)
	0x81, 0x03, //   INPUT (Cnst,Var,Abs)

	0x05, 0x08, //   USAGE_PAGE (LEDs)
	0x19, 0x01, //   USAGE_MINIMUM (Num Lock)
	0x29, 0x05, //   USAGE_MAXIMUM (Kana)
	0x75, 0x01, //   REPORT_SIZE (1)
	0x95, 0x05, //   REPORT_COUNT (5)
	0x91, 0x02, //   OUTPUT (Data,Var,Abs)

	0x75, 0x03, //   REPORT_SIZE (3)
	0x95, 0x01, //   REPORT_COUNT (1)
	0x91, 0x03, //   OUTPUT (Cnst,Var,Abs)

	0xc0, // END_COLLECTION
}

// KeyboardFullReportDescriptor is the 0x22-byte custom report: 256
// bits of key state (usage page 0x07, usages 0x00..0xFF), 15 bits of
// system-control usages (0x81..0x8F) plus one padding bit, then a
// 256-bit LED output (usage page 0x08).
var KeyboardFullReportDescriptor = []byte{
	0x05, 0x01, // USAGE_PAGE (Generic Desktop)
	0x09, 0x06, // USAGE (Keyboard)
	0xa1, 0x01, // COLLECTION (Application)

	0x05, 0x07, //   USAGE_PAGE (Keyboard)
	0x19, 0x00, //   USAGE_MINIMUM (Reserved)
	0x2a, 0xff, 0x00, //   USAGE_MAXIMUM (0xff)
	0x15, 0x00, //   LOGICAL_MINIMUM (0)
	0x25, 0x01, //   LOGICAL_MAXIMUM (1)
	0x75, 0x01, //   REPORT_SIZE (1)
	0x96, 0x00, 0x01, //   REPORT_COUNT (0x100)
	0x81, 0x02, //   INPUT (Data,Var,Abs)

	0x05, 0x01, //   USAGE_PAGE (Generic Desktop)
	0x09, 0x80, //   USAGE (Sys Control)
	0x19, 0x81, //   USAGE_MINIMUM (Sys Power Down)
	0x29, 0x8f, //   USAGE_MAXIMUM (Sys Warm Restart)
	0x15, 0x00, //   LOGICAL_MINIMUM (0)
	0x25, 0x01, //   LOGICAL_MAXIMUM (1)
	0x75, 0x01, //   REPORT_SIZE (1)
	0x95, 0x0f, //   REPORT_COUNT (0xf)
	0x81, 0x02, //   INPUT (Data,Var,Abs)

	0x75, 0x01, //   REPORT_SIZE (1)
	0x95, 0x01, //   REPORT_COUNT (1)
	0x81, 0x03, //   INPUT (Cnst,Var,Abs)

	0x05, 0x08, //   USAGE_PAGE (LEDs)
	0x19, 0x00, //   USAGE_MINIMUM (Undefined)
	0x2a, 0xff, 0x00, //   USAGE_MAXIMUM (0xff)
	0x75, 0x01, //   REPORT_SIZE (1)
	0x96, 0x00, 0x01, //   REPORT_COUNT (0x100)
	0x91, 0x02, //   OUTPUT (Data,Var,Abs)

	0xc0, // END_COLLECTION
}

// MouseLegacyReportDescriptor is the 4-byte boot-protocol mouse report
// descriptor: an 8-bit button mask, then three signed relative 8-bit
// axes (X, Y, wheel). The Pointer/Physical collection wrapping around
// the button and axis usages matches NicoHood/HID's BootMouse, which
// Apple's boot recovery screen specifically requires to recognize the
// device.
var MouseLegacyReportDescriptor = []byte{
	0x05, 0x01, // USAGE_PAGE (Generic Desktop)
	0x09, 0x02, // USAGE (Mouse)
	0xa1, 0x01, // COLLECTION (Application)

	0x09, 0x01, //   USAGE (Pointer)
	0xa1, 0x00, //   COLLECTION (Physical)

	0x05, 0x09, //     USAGE_PAGE (Button)
	0x19, 0x01, //     USAGE_MINIMUM (Button 1)
	0x29, 0x08, //     USAGE_MAXIMUM (Button 8)
	0x15, 0x00, //     LOGICAL_MINIMUM (0)
	0x25, 0x01, //     LOGICAL_MAXIMUM (1)
	0x75, 0x01, //     REPORT_SIZE (1)
	0x95, 0x08, //     REPORT_COUNT (8)
	0x81, 0x02, //     INPUT (Data,Var,Abs)

	0x05, 0x01, //     USAGE_PAGE (Generic Desktop)
	0x09, 0x30, //     USAGE (X)
	0x09, 0x31, //     USAGE (Y)
	0x09, 0x38, //     USAGE (Wheel)
	0x15, 0x81, //     LOGICAL_MINIMUM (-127)
	0x25, 0x7f, //     LOGICAL_MAXIMUM (127)
	0x75, 0x08, //     REPORT_SIZE (8)
	0x95, 0x03, //     REPORT_COUNT (3)
	0x81, 0x06, //     INPUT (Data,Var,Rel)

	0xc0, //   END_COLLECTION (Physical)
	0xc0, // END_COLLECTION
}

// MouseAbsoluteReportDescriptor is the 6-byte absolute-positioning
// mouse report descriptor: an 8-bit button mask, two 16-bit
// little-endian unsigned absolute coordinates, and a signed 8-bit
// wheel. The logical maximum for X/Y is 0x7FFF rather than 0xFFFF
// because Windows 7 rejects a negative logical minimum paired with a
// 16-bit unsigned logical maximum on the same axis.
var MouseAbsoluteReportDescriptor = []byte{
	0x05, 0x01, // USAGE_PAGE (Generic Desktop)
	0x09, 0x02, // USAGE (Mouse)
	0xa1, 0x01, // COLLECTION (Application)

	0x09, 0x01, //   USAGE (Pointer)
	0xa1, 0x00, //   COLLECTION (Physical)

	0x05, 0x09, //     USAGE_PAGE (Button)
	0x19, 0x01, //     USAGE_MINIMUM (Button 1)
	0x29, 0x08, //     USAGE_MAXIMUM (Button 8)
	0x15, 0x00, //     LOGICAL_MINIMUM (0)
	0x25, 0x01, //     LOGICAL_MAXIMUM (1)
	0x75, 0x01, //     REPORT_SIZE (1)
	0x95, 0x08, //     REPORT_COUNT (8)
	0x81, 0x02, //     INPUT (Data,Var,Abs)

	0x05, 0x01, //     USAGE_PAGE (Generic Desktop)
	0x09, 0x30, //     USAGE (X)
	0x09, 0x31, //     USAGE (Y)
	0x15, 0x00, 0x00, //     LOGICAL_MINIMUM (0)
	0x26, 0xff, 0x7f, //     LOGICAL_MAXIMUM (0x7fff)
	0x75, 0x10, //     REPORT_SIZE (16)
	0x95, 0x02, //     REPORT_COUNT (2)
	0x81, 0x02, //     INPUT (Data,Var,Abs)

	0x09, 0x38, //     USAGE (Wheel)
	0x15, 0x81, //     LOGICAL_MINIMUM (-127)
	0x25, 0x7f, //     LOGICAL_MAXIMUM (127)
	0x75, 0x08, //     REPORT_SIZE (8)
	0x95, 0x01, //     REPORT_COUNT (1)
	0x81, 0x06, //     INPUT (Data,Var,Rel)

	0xc0, //   END_COLLECTION (Physical)
	0xc0, // END_COLLECTION
}

// CompositeReportDescriptor multiplexes the absolute mouse (report ID
// 0x01) and the full keyboard (report ID 0x02) onto a single HID
// interface, so only one /dev/hidgN endpoint needs to stay open for
// both high-resolution input sources. Total transfer size including
// the leading report-ID byte is CompositeReportLength (0x23) for both
// report IDs — the mouse report is padded with 0x1C constant bytes to
// match the keyboard's length, since a single endpoint's max report
// size is fixed to the largest report it carries.
var CompositeReportDescriptor = []byte{
	0x05, 0x01, // USAGE_PAGE (Generic Desktop)
	0x09, 0x02, // USAGE (Mouse)
	0xa1, 0x01, // COLLECTION (Application)
	0x85, CompositeReportIDMouse, //   REPORT_ID (1)
	0x09, 0x01, //   USAGE (Pointer)
	0xa1, 0x00, //   COLLECTION (Physical)
	0x05, 0x09, //     USAGE_PAGE (Button)
	0x19, 0x01, //     USAGE_MINIMUM (Button 1)
	0x29, 0x08, //     USAGE_MAXIMUM (Button 8)
	0x15, 0x00, //     LOGICAL_MINIMUM (0)
	0x25, 0x01, //     LOGICAL_MAXIMUM (1)
	0x75, 0x01, //     REPORT_SIZE (1)
	0x95, 0x08, //     REPORT_COUNT (8)
	0x81, 0x02, //     INPUT (Data,Var,Abs)
	0x05, 0x01, //     USAGE_PAGE (Generic Desktop)
	0x09, 0x30, //     USAGE (X)
	0x09, 0x31, //     USAGE (Y)
	0x15, 0x00, 0x00, //     LOGICAL_MINIMUM (0)
	0x26, 0xff, 0x7f, //     LOGICAL_MAXIMUM (0x7fff)
	0x75, 0x10, //     REPORT_SIZE (16)
	0x95, 0x02, //     REPORT_COUNT (2)
	0x81, 0x02, //     INPUT (Data,Var,Abs)
	0x09, 0x38, //     USAGE (Wheel)
	0x15, 0x81, //     LOGICAL_MINIMUM (-127)
	0x25, 0x7f, //     LOGICAL_MAXIMUM (127)
	0x75, 0x08, //     REPORT_SIZE (8)
	0x95, 0x01, //     REPORT_COUNT (1)
	0x81, 0x06, //     INPUT (Data,Var,Rel)
	0x75, 0x08, //     REPORT_SIZE (8)
	0x95, 0x1c, //     REPORT_COUNT (0x1c) -- pad to CompositeReportLength
	0x81, 0x03, //     INPUT (Cnst,Var,Abs)
	0xc0, //   END_COLLECTION (Physical)
	0xc0, // END_COLLECTION

	0x05, 0x01, // USAGE_PAGE (Generic Desktop)
	0x09, 0x06, // USAGE (Keyboard)
	0xa1, 0x01, // COLLECTION (Application)
	0x85, CompositeReportIDKeyboard, //   REPORT_ID (2)
	0x05, 0x07, //   USAGE_PAGE (Keyboard)
	0x19, 0x00, //   USAGE_MINIMUM (Reserved)
	0x2a, 0xff, 0x00, //   USAGE_MAXIMUM (0xff)
	0x15, 0x00, //   LOGICAL_MINIMUM (0)
	0x25, 0x01, //   LOGICAL_MAXIMUM (1)
	0x75, 0x01, //   REPORT_SIZE (1)
	0x96, 0x00, 0x01, //   REPORT_COUNT (0x100)
	0x81, 0x02, //   INPUT (Data,Var,Abs)
	0x05, 0x01, //   USAGE_PAGE (Generic Desktop)
	0x09, 0x80, //   USAGE (Sys Control)
	0x19, 0x81, //   USAGE_MINIMUM (Sys Power Down)
	0x29, 0x8f, //   USAGE_MAXIMUM (Sys Warm Restart)
	0x15, 0x00, //   LOGICAL_MINIMUM (0)
	0x25, 0x01, //   LOGICAL_MAXIMUM (1)
	0x75, 0x01, //   REPORT_SIZE (1)
	0x95, 0x0f, //   REPORT_COUNT (0xf)
	0x81, 0x02, //   INPUT (Data,Var,Abs)
	0x75, 0x01, //   REPORT_SIZE (1)
	0x95, 0x01, //   REPORT_COUNT (1)
	0x81, 0x03, //   INPUT (Cnst,Var,Abs)
	0x05, 0x08, //   USAGE_PAGE (LEDs)
	0x19, 0x00, //   USAGE_MINIMUM (Undefined)
	0x2a, 0xff, 0x00, //   USAGE_MAXIMUM (0xff)
	0x75, 0x01, //   REPORT_SIZE (1)
	0x96, 0x00, 0x01, //   REPORT_COUNT (0x100)
	0x91, 0x02, //   OUTPUT (Data,Var,Abs)
	0xc0, // END_COLLECTION
}
