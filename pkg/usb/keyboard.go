// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

// Keyboard holds the bit-packed state of a full-report keyboard: a
// 256-bit key-down bitset (usage page 0x07), a 15-bit system-control
// bitset (usage page 0x01, usage 0x80, offset from SystemPowerDown),
// and a 256-bit LED bitset (usage page 0x08) mirrored back from the
// host. Every method is a plain bit-twiddle against these arrays —
// synchronization is the caller's job (KeyboardDevice wraps a Keyboard
// in a mutex).
type Keyboard struct {
	led            [0x20]byte
	keys           [0x20]byte
	sysControlKeys [0x2]byte
}

// Clear zeroes all key, system-control, and LED state.
func (k *Keyboard) Clear() {
	k.led = [0x20]byte{}
	k.keys = [0x20]byte{}
	k.sysControlKeys = [0x2]byte{}
}

// GetLed reports whether the LED at ledID (usage page 0x08) is lit.
func (k *Keyboard) GetLed(ledID uint16) bool {
	idx := int(ledID) / 8
	if idx >= len(k.led) {
		return false
	}
	return (k.led[idx]>>(ledID%8))&1 == 1
}

// GetKey reports whether the key at keyID (usage page 0x07) is down.
func (k *Keyboard) GetKey(keyID uint16) bool {
	idx := int(keyID) / 8
	if idx >= len(k.keys) {
		return false
	}
	return (k.keys[idx]>>(keyID%8))&1 == 1
}

// SetKey sets or clears the key at keyID and reports whether the bit
// actually changed.
func (k *Keyboard) SetKey(keyID uint16, down bool) bool {
	idx := int(keyID) / 8
	if idx >= len(k.keys) {
		return false
	}
	prev := k.keys[idx]
	if down {
		k.keys[idx] |= 1 << (keyID % 8)
	} else {
		k.keys[idx] &^= 1 << (keyID % 8)
	}
	return prev != k.keys[idx]
}

// GetSysControlKey reports whether the system-control usage at
// sysControlKeyID (an absolute usage ID such as SystemPowerDown) is
// down.
func (k *Keyboard) GetSysControlKey(sysControlKeyID uint16) bool {
	id := sysControlKeyID - SystemPowerDown
	idx := int(id) / 8
	if idx >= len(k.sysControlKeys) {
		return false
	}
	return (k.sysControlKeys[idx]>>(id%8))&1 == 1
}

// SetSysControlKey sets or clears the system-control usage at
// sysControlKeyID and reports whether the bit actually changed.
func (k *Keyboard) SetSysControlKey(sysControlKeyID uint16, down bool) bool {
	id := sysControlKeyID - SystemPowerDown
	idx := int(id) / 8
	if idx >= len(k.sysControlKeys) {
		return false
	}
	prev := k.sysControlKeys[idx]
	if down {
		k.sysControlKeys[idx] |= 1 << (id % 8)
	} else {
		k.sysControlKeys[idx] &^= 1 << (id % 8)
	}
	return prev != k.sysControlKeys[idx]
}

// GetPayload renders the full-report payload: 0x20 bytes of key
// bitset followed by 0x2 bytes of system-control bitset.
func (k *Keyboard) GetPayload() [KeyboardFullReportLength]byte {
	var ret [KeyboardFullReportLength]byte
	copy(ret[:0x20], k.keys[:])
	copy(ret[0x20:], k.sysControlKeys[:])
	return ret
}

// GetLegacyPayload renders the boot-protocol payload: a modifier byte
// built from the eight modifier usages (KeyboardLeftControl through
// KeyboardRightGUI), a reserved byte, and up to six non-modifier
// usages in ascending usage-ID order. Any key beyond the sixth is
// silently dropped — the boot-protocol report has no rollover-error
// signaling path of its own here.
func (k *Keyboard) GetLegacyPayload() [KeyboardLegacyReportLength]byte {
	var ret [KeyboardLegacyReportLength]byte

	var ctrl byte
	for i := uint16(KeyboardLeftControl); i <= KeyboardRightGUI; i++ {
		if k.GetKey(i) {
			ctrl |= 1 << (i - KeyboardLeftControl)
		}
	}
	ret[0] = ctrl

	idx := 2
	for i := uint16(0); i <= KeyboardApplication; i++ {
		if idx >= len(ret) {
			break
		}
		if k.GetKey(i) {
			ret[idx] = byte(i)
			idx++
		}
	}
	return ret
}
