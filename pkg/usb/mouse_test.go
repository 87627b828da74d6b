// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMouseSetButtonReportsChange(t *testing.T) {
	var m Mouse

	assert.True(t, m.SetButton(1, true))
	assert.False(t, m.SetButton(1, true), "re-pressing an already-down button should not change state")
	assert.True(t, m.GetButton(1))

	assert.True(t, m.SetButton(1, false))
	assert.False(t, m.GetButton(1))
}

func TestMouseButtonOutOfRange(t *testing.T) {
	var m Mouse
	assert.False(t, m.SetButton(0, true), "button ID 0 is reserved and always a no-op")
	assert.False(t, m.GetButton(0))
	assert.False(t, m.SetButton(9, true), "button IDs above 8 are out of range")
	assert.False(t, m.GetButton(9))
}

func TestMouseClear(t *testing.T) {
	var m Mouse
	m.SetButton(1, true)
	m.Clear()
	assert.False(t, m.GetButton(1))
}

// TestMouseAbsolutePayloadEncoding covers the absolute-mouse scenario:
// button=0x01, send(0x1234, 0x5678, -3) must produce
// [0x01,0x34,0x12,0x78,0x56,0xFD].
func TestMouseAbsolutePayloadEncoding(t *testing.T) {
	var m Mouse
	m.SetButton(1, true)

	got := m.GetPayload(0x1234, 0x5678, -3)
	want := [MouseAbsoluteReportLength]byte{0x01, 0x34, 0x12, 0x78, 0x56, 0xfd}
	assert.Equal(t, want, got)
}

func TestMouseAbsolutePayloadClamping(t *testing.T) {
	var m Mouse
	got := m.GetPayload(0xffff, 0xffff, -127)
	want := [MouseAbsoluteReportLength]byte{0, 0xff, 0x7f, 0xff, 0x7f, byte(int8(-127))}
	assert.Equal(t, want, got)
}

func TestMouseLegacyPayloadClamping(t *testing.T) {
	var m Mouse
	m.SetButton(2, true)
	got := m.GetLegacyPayload(-128, 10, -128)
	want := [MouseLegacyReportLength]byte{0x02, byte(int8(-127)), 10, byte(int8(-127))}
	assert.Equal(t, want, got)
}
