// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

// Clamp bounds shared by both mouse payload encodings.
const (
	mouseAbsMax   uint16 = 0x7fff
	mouseRelMin   int8   = -127
	mouseWheelMin int8   = -127
)

// Mouse holds the bit-packed button state shared by both the absolute
// and legacy (relative) report encodings. Button state is the only
// thing that persists between reports — position and wheel deltas are
// supplied fresh on every GetPayload/GetLegacyPayload call.
type Mouse struct {
	button byte
}

// Clear releases all buttons.
func (m *Mouse) Clear() {
	m.button = 0
}

// GetButton reports whether buttonID (1..8) is pressed. buttonID 0 or
// greater than 8 is out of range and always reports false.
func (m *Mouse) GetButton(buttonID uint16) bool {
	if buttonID == 0 || buttonID > 8 {
		return false
	}
	return (m.button>>(buttonID-1))&1 == 1
}

// SetButton sets or clears buttonID (1..8) and reports whether the bit
// actually changed. buttonID 0 or greater than 8 is a no-op that
// always reports false.
func (m *Mouse) SetButton(buttonID uint16, down bool) bool {
	if buttonID == 0 || buttonID > 8 {
		return false
	}
	prev := m.button
	if down {
		m.button |= 1 << (buttonID - 1)
	} else {
		m.button &^= 1 << (buttonID - 1)
	}
	return prev != m.button
}

// GetPayload renders the 6-byte absolute report: the button mask,
// little-endian absolute X and Y each clamped to 0..=0x7FFF, and a
// signed wheel delta clamped to >= -127.
func (m *Mouse) GetPayload(x, y uint16, wheel int8) [MouseAbsoluteReportLength]byte {
	if x > mouseAbsMax {
		x = mouseAbsMax
	}
	if y > mouseAbsMax {
		y = mouseAbsMax
	}
	if wheel < mouseWheelMin {
		wheel = mouseWheelMin
	}

	var ret [MouseAbsoluteReportLength]byte
	ret[0] = m.button
	ret[1] = byte(x)
	ret[2] = byte(x >> 8)
	ret[3] = byte(y)
	ret[4] = byte(y >> 8)
	ret[5] = byte(wheel)
	return ret
}

// GetLegacyPayload renders the 4-byte boot-protocol report: the button
// mask and three signed relative deltas (X, Y, wheel), each clamped to
// >= -127 to match the descriptor's LOGICAL_MINIMUM.
func (m *Mouse) GetLegacyPayload(x, y, wheel int8) [MouseLegacyReportLength]byte {
	if x < mouseRelMin {
		x = mouseRelMin
	}
	if y < mouseRelMin {
		y = mouseRelMin
	}
	if wheel < mouseWheelMin {
		wheel = mouseWheelMin
	}

	var ret [MouseLegacyReportLength]byte
	ret[0] = m.button
	ret[1] = byte(x)
	ret[2] = byte(y)
	ret[3] = byte(wheel)
	return ret
}
