// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyboardSetKeyReportsChange(t *testing.T) {
	var k Keyboard

	assert.True(t, k.SetKey(KeyboardA, true), "first press should change state")
	assert.False(t, k.SetKey(KeyboardA, true), "re-pressing an already-down key should not change state")
	assert.True(t, k.GetKey(KeyboardA))

	assert.True(t, k.SetKey(KeyboardA, false), "release should change state")
	assert.False(t, k.GetKey(KeyboardA))
	assert.False(t, k.SetKey(KeyboardA, false), "releasing an already-up key should not change state")
}

func TestKeyboardSetKeyOutOfRange(t *testing.T) {
	var k Keyboard
	// 0x20 bytes * 8 bits = 256 usages, so 256 is one past the bitset.
	assert.False(t, k.SetKey(256, true))
	assert.False(t, k.GetKey(256))
}

func TestKeyboardSysControlKeyRoundTrip(t *testing.T) {
	var k Keyboard

	assert.True(t, k.SetSysControlKey(SystemSleep, true))
	assert.True(t, k.GetSysControlKey(SystemSleep))
	assert.False(t, k.GetSysControlKey(SystemPowerDown))

	assert.True(t, k.SetSysControlKey(SystemSleep, false))
	assert.False(t, k.GetSysControlKey(SystemSleep))
}

func TestKeyboardClear(t *testing.T) {
	var k Keyboard
	k.SetKey(KeyboardA, true)
	k.SetSysControlKey(SystemSleep, true)
	k.led[0] = 0xff

	k.Clear()

	assert.False(t, k.GetKey(KeyboardA))
	assert.False(t, k.GetSysControlKey(SystemSleep))
	assert.False(t, k.GetLed(0))
}

// TestKeyboardLegacyPayloadSingleKey covers the single-key-press scenario:
// set_key(0x04, true) followed by send_legacy must produce
// [0,0,0x04,0,0,0,0,0].
func TestKeyboardLegacyPayloadSingleKey(t *testing.T) {
	var k Keyboard
	k.SetKey(KeyboardA, true)

	got := k.GetLegacyPayload()
	want := [KeyboardLegacyReportLength]byte{0, 0, KeyboardA, 0, 0, 0, 0, 0}
	assert.Equal(t, want, got)
}

// TestKeyboardLegacyPayloadModifierPlusKey covers set_key(0xE1, true);
// set_key(0x04, true) -> [0x02,0,0x04,0,0,0,0,0].
func TestKeyboardLegacyPayloadModifierPlusKey(t *testing.T) {
	var k Keyboard
	k.SetKey(KeyboardLeftShift, true)
	k.SetKey(KeyboardA, true)

	got := k.GetLegacyPayload()
	want := [KeyboardLegacyReportLength]byte{0x02, 0, KeyboardA, 0, 0, 0, 0, 0}
	assert.Equal(t, want, got)
}

// TestKeyboardLegacyPayloadSixKeyRollover covers pressing usages
// 0x04..0x0A: only the first six (ascending usage ID) survive, the
// seventh (0x0A) is silently dropped.
func TestKeyboardLegacyPayloadSixKeyRollover(t *testing.T) {
	var k Keyboard
	for usage := uint16(0x04); usage <= 0x0a; usage++ {
		k.SetKey(usage, true)
	}

	got := k.GetLegacyPayload()
	want := [KeyboardLegacyReportLength]byte{0, 0, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}
	assert.Equal(t, want, got)
}

func TestKeyboardLedRoundTrip(t *testing.T) {
	var k Keyboard
	assert.False(t, k.GetLed(1)) // NumLock
	k.led[0] = 0x02
	assert.True(t, k.GetLed(1))
	assert.False(t, k.GetLed(0))
}

func TestKeyboardFullPayloadLayout(t *testing.T) {
	var k Keyboard
	k.SetKey(KeyboardA, true)
	k.SetSysControlKey(SystemPowerDown, true)

	got := k.GetPayload()
	assert.Equal(t, byte(1<<(KeyboardA%8)), got[KeyboardA/8])
	assert.Equal(t, byte(1), got[0x20])
}
