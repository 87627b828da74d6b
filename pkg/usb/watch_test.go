// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWatchGetReturnsInitialValue(t *testing.T) {
	w := NewWatch(42)
	assert.Equal(t, 42, w.Get())
}

func TestWatchPublishWakesReceiver(t *testing.T) {
	w := NewWatch(0)

	type result struct {
		value   int
		version uint64
		ok      bool
	}
	done := make(chan result, 1)
	go func() {
		v, ver, ok := w.Recv(0)
		done <- result{v, ver, ok}
	}()

	// Give the receiver a chance to block before publishing.
	time.Sleep(10 * time.Millisecond)
	w.Publish(7, nil)

	select {
	case r := <-done:
		assert.True(t, r.ok)
		assert.Equal(t, 7, r.value)
		assert.Equal(t, uint64(1), r.version)
	case <-time.After(time.Second):
		t.Fatal("Recv did not unblock after Publish")
	}
}

func TestWatchPublishCoalescesIntermediateValues(t *testing.T) {
	w := NewWatch(0)
	w.Publish(1, nil)
	w.Publish(2, nil)
	w.Publish(3, nil)

	// A subscriber that only ever calls Recv(0) sees only the latest
	// value, never the intermediate ones -- last-value-wins, not a queue.
	v, ver, ok := w.Recv(0)
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, uint64(3), ver)
}

func TestWatchPublishEqualIsNoOp(t *testing.T) {
	w := NewWatch([0x2]byte{0x01, 0x02})
	equal := func(a, b [0x2]byte) bool { return a == b }

	w.Publish([0x2]byte{0x01, 0x02}, equal)
	// Reach into the unexported counter directly: calling the blocking
	// Recv here would hang forever since an unchanged publish must not
	// wake anyone.
	assert.Equal(t, uint64(0), w.version, "publishing an unchanged value must not bump the version")

	w.Publish([0x2]byte{0x01, 0x03}, equal)
	assert.Equal(t, uint64(1), w.version)
}

func TestWatchCloseUnblocksReceivers(t *testing.T) {
	w := NewWatch(0)

	done := make(chan bool, 1)
	go func() {
		_, _, ok := w.Recv(0)
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	w.Close()

	select {
	case ok := <-done:
		assert.False(t, ok, "Recv should report ok=false once the Watch is closed")
	case <-time.After(time.Second):
		t.Fatal("Recv did not unblock after Close")
	}
}
