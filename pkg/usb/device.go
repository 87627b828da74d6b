// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package usb

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ip-kvm-go/usbkvm/pkg/file"
)

// hidDeviceStartupPollInterval is how often the provisioner polls for
// a /dev/hidgN node to appear after a gadget is bound to a UDC — the
// kernel creates these asynchronously, so a freshly applied gadget's
// device files do not exist the instant UDC bind returns.
const hidDeviceStartupPollInterval = 500 * time.Millisecond

// WaitForHidDevice polls for path to exist, at
// hidDeviceStartupPollInterval, until ctx is done.
func WaitForHidDevice(ctx doneWaiter, path string) error {
	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(hidDeviceStartupPollInterval):
		}
	}
}

// doneWaiter is the subset of context.Context device-open waits need;
// declared locally so this file doesn't have to import context just
// for a one-method interface.
type doneWaiter interface {
	Done() <-chan struct{}
	Err() error
}

// endpoint is one /dev/hidgN character device opened twice — once
// read-only, once write-only — so a slow host reading the device
// never blocks an LED/status write, and vice versa. Each direction is
// additionally mutex-guarded so concurrent senders serialize onto the
// same fd.
type endpoint struct {
	path string

	readMu  sync.Mutex
	read    *os.File
	writeMu sync.Mutex
	write   *os.File
}

func openEndpoint(path string) (*endpoint, error) {
	r, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s for read: %w", path, err)
	}
	w, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("open %s for write: %w", path, err)
	}
	return &endpoint{path: path, read: r, write: w}, nil
}

func (e *endpoint) Close() error {
	err1 := e.read.Close()
	err2 := e.write.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// readFrame performs a single Read into buf within deadline and returns
// the byte count and error unchanged; it does not retry a short read.
// Callers compare the count against the expected report size and report
// a mismatch as ErrIgnorable. A file that does not support deadlines
// (os.ErrNoDeadline) is read without one.
func (e *endpoint) readFrame(buf []byte, deadline time.Time) (int, error) {
	e.readMu.Lock()
	defer e.readMu.Unlock()
	if err := e.read.SetReadDeadline(deadline); err != nil && !errors.Is(err, os.ErrNoDeadline) {
		return 0, err
	}
	n, err := e.read.Read(buf)
	if err != nil {
		return n, err
	}
	return n, nil
}

// writeFrame writes payload in full within deadline. A file that does
// not support deadlines (os.ErrNoDeadline) is written without one.
func (e *endpoint) writeFrame(payload []byte, deadline time.Time) error {
	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if err := e.write.SetWriteDeadline(deadline); err != nil && !errors.Is(err, os.ErrNoDeadline) {
		return err
	}
	_, err := e.write.Write(payload)
	return err
}

// KeyboardDevice owns the full-report and boot-protocol keyboard
// endpoints, the in-memory Keyboard state they share, and the LED
// watch channel host LED updates are published to.
type KeyboardDevice struct {
	mu       sync.Mutex
	keyboard Keyboard

	full   *endpoint
	legacy *endpoint

	ledWatch *Watch[[0x20]byte]
}

// NewKeyboardDevice opens the full and legacy keyboard endpoints.
// Both /dev/hidgN nodes must already exist — callers wait for them
// with WaitForHidDevice first.
func NewKeyboardDevice(fullPath, legacyPath string) (*KeyboardDevice, error) {
	full, err := openEndpoint(fullPath)
	if err != nil {
		return nil, err
	}
	legacy, err := openEndpoint(legacyPath)
	if err != nil {
		full.Close()
		return nil, err
	}
	return &KeyboardDevice{
		full:     full,
		legacy:   legacy,
		ledWatch: NewWatch([0x20]byte{}),
	}, nil
}

// Close releases both endpoints and wakes any LED subscribers.
func (k *KeyboardDevice) Close() error {
	k.ledWatch.Close()
	err1 := k.full.Close()
	err2 := k.legacy.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

// SetKey sets or clears keyID and reports whether it changed.
func (k *KeyboardDevice) SetKey(keyID uint16, down bool) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keyboard.SetKey(keyID, down)
}

// SetSysControlKey sets or clears sysControlKeyID and reports whether
// it changed.
func (k *KeyboardDevice) SetSysControlKey(sysControlKeyID uint16, down bool) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.keyboard.SetSysControlKey(sysControlKeyID, down)
}

// Send writes the current full-report payload to the full-report
// endpoint.
func (k *KeyboardDevice) Send(deadline time.Time) error {
	k.mu.Lock()
	payload := k.keyboard.GetPayload()
	k.mu.Unlock()
	return k.full.writeFrame(payload[:], deadline)
}

// SendLegacy writes the current boot-protocol payload to the legacy
// endpoint.
func (k *KeyboardDevice) SendLegacy(deadline time.Time) error {
	k.mu.Lock()
	payload := k.keyboard.GetLegacyPayload()
	k.mu.Unlock()
	return k.legacy.writeFrame(payload[:], deadline)
}

// RecvLegacy reads one LED byte from the legacy endpoint and folds it
// into keyboard.led[0] as (led[0] & 0xE0) | (frame & 0x1F) — the boot
// protocol only carries 5 LED bits, so the high 3 bits of whatever the
// full-report path last wrote are preserved. Publishes an LED snapshot
// if it changed.
func (k *KeyboardDevice) RecvLegacy(deadline time.Time) error {
	var buf [1]byte
	n, err := k.legacy.readFrame(buf[:], deadline)
	if err != nil {
		return err
	}
	if n != 1 {
		return file.NewIgnorableError(k.legacy.path, "short legacy LED read")
	}

	k.mu.Lock()
	k.keyboard.led[0] = (k.keyboard.led[0] & 0xe0) | (buf[0] & 0x1f)
	snapshot := k.keyboard.led
	k.mu.Unlock()

	k.ledWatch.Publish(snapshot, func(a, b [0x20]byte) bool { return a == b })
	return nil
}

// Recv reads one full LED report from the full-report endpoint. A
// short read (length != 0x20) is ignored rather than failed. Publishes
// an LED snapshot if it changed.
func (k *KeyboardDevice) Recv(deadline time.Time) error {
	var buf [0x20]byte
	n, err := k.full.readFrame(buf[:], deadline)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return file.NewIgnorableError(k.full.path, "short keyboard LED read")
	}

	k.mu.Lock()
	k.keyboard.led = buf
	snapshot := k.keyboard.led
	k.mu.Unlock()

	k.ledWatch.Publish(snapshot, func(a, b [0x20]byte) bool { return a == b })
	return nil
}

// SubscribeLed returns the LED watch channel; callers poll it with
// (*Watch[[0x20]byte]).Recv, coalescing to the latest snapshot.
func (k *KeyboardDevice) SubscribeLed() *Watch[[0x20]byte] {
	return k.ledWatch
}

// MouseDevice owns the legacy (relative) mouse endpoint and the
// in-memory Mouse button state. The absolute-position report has no
// dedicated endpoint of its own — it only exists multiplexed onto the
// composite device — so MouseDevice only ever sends the legacy frame
// directly; absolute reports are assembled by CompositeDevice.
type MouseDevice struct {
	mu    sync.Mutex
	mouse Mouse

	legacy *endpoint
}

// NewMouseDevice opens the legacy mouse endpoint.
func NewMouseDevice(legacyPath string) (*MouseDevice, error) {
	legacy, err := openEndpoint(legacyPath)
	if err != nil {
		return nil, err
	}
	return &MouseDevice{legacy: legacy}, nil
}

func (m *MouseDevice) Close() error {
	return m.legacy.Close()
}

// SetButton sets or clears buttonID and reports whether it changed.
func (m *MouseDevice) SetButton(buttonID uint16, down bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mouse.SetButton(buttonID, down)
}

// SendLegacy writes a relative-motion report to the legacy endpoint.
func (m *MouseDevice) SendLegacy(x, y, wheel int8, deadline time.Time) error {
	m.mu.Lock()
	payload := m.mouse.GetLegacyPayload(x, y, wheel)
	m.mu.Unlock()
	return m.legacy.writeFrame(payload[:], deadline)
}

// Button reports whether buttonID is currently held, for composing an
// absolute report through CompositeDevice.
func (m *MouseDevice) Button(buttonID uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mouse.GetButton(buttonID)
}

func (m *MouseDevice) absolutePayload(x, y uint16, wheel int8) [MouseAbsoluteReportLength]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mouse.GetPayload(x, y, wheel)
}

// CompositeDevice owns the single multiplexed HID endpoint carrying
// both the absolute-mouse (report ID 1) and full-keyboard (report ID
// 2) reports, a watch channel holding the latest composite frame to
// send, and the demultiplexing receive loop that routes inbound
// frames back to the Keyboard they update (LED state).
type CompositeDevice struct {
	endpoint *endpoint

	keyboard *KeyboardDevice
	mouse    *MouseDevice

	outbound *Watch[[CompositeReportLength]byte]
}

// NewCompositeDevice opens the composite endpoint and wires it to the
// keyboard and mouse devices it multiplexes reports for.
func NewCompositeDevice(path string, keyboard *KeyboardDevice, mouse *MouseDevice) (*CompositeDevice, error) {
	ep, err := openEndpoint(path)
	if err != nil {
		return nil, err
	}
	return &CompositeDevice{
		endpoint: ep,
		keyboard: keyboard,
		mouse:    mouse,
		outbound: NewWatch([CompositeReportLength]byte{}),
	}, nil
}

func (c *CompositeDevice) Close() error {
	c.outbound.Close()
	return c.endpoint.Close()
}

// PublishKeyboard republishes the keyboard's full-report payload as
// the composite frame's report-ID-2 body.
func (c *CompositeDevice) PublishKeyboard() {
	c.keyboard.mu.Lock()
	kbPayload := c.keyboard.keyboard.GetPayload()
	c.keyboard.mu.Unlock()

	var frame [CompositeReportLength]byte
	frame[0] = CompositeReportIDKeyboard
	copy(frame[1:], kbPayload[:])
	c.outbound.Publish(frame, nil)
}

// PublishMouse republishes the mouse's absolute-position payload as
// the composite frame's report-ID-1 body, clamped and encoded by
// MouseDevice.absolutePayload; the absolute report has no endpoint of
// its own.
func (c *CompositeDevice) PublishMouse(x, y uint16, wheel int8) {
	payload := c.mouse.absolutePayload(x, y, wheel)

	var frame [CompositeReportLength]byte
	frame[0] = CompositeReportIDMouse
	copy(frame[1:], payload[:])
	c.outbound.Publish(frame, nil)
}

// ApplyInboundKeyboardReport folds an inbound composite keyboard-report
// payload (the host's LED output report, multiplexed onto the
// composite endpoint under CompositeReportIDKeyboard) into the
// keyboard's LED state and publishes a snapshot if it changed. Only
// the leading 0x20 bytes of payload carry LED bits; the keyboard full
// report's remaining bytes are meaningless in the output direction.
func (c *CompositeDevice) ApplyInboundKeyboardReport(payload []byte) {
	if len(payload) < 0x20 {
		return
	}
	var buf [0x20]byte
	copy(buf[:], payload[:0x20])

	c.keyboard.mu.Lock()
	c.keyboard.keyboard.led = buf
	snapshot := c.keyboard.keyboard.led
	c.keyboard.mu.Unlock()

	c.keyboard.ledWatch.Publish(snapshot, func(a, b [0x20]byte) bool { return a == b })
}

// SendLoop runs until the outbound watch is closed, writing each new
// composite frame to the endpoint. Write failures are non-fatal (the
// host may simply be powered off) and are returned to the caller to
// log; the loop itself keeps running.
func (c *CompositeDevice) SendLoop(deadline func() time.Time, onError func(error)) {
	var version uint64
	for {
		frame, v, ok := c.outbound.Recv(version)
		if !ok {
			return
		}
		version = v
		if err := c.endpoint.writeFrame(frame[:], deadline()); err != nil && onError != nil {
			onError(err)
		}
	}
}

// RecvLoop reads one composite-length frame at a time and hands it to
// onFrame with the leading report-ID byte split off; routing by report
// ID, including dropping an unrecognized one, is left to onFrame. A
// length mismatch is passed to onError as ErrIgnorable and dropped
// rather than treated as fatal. Read errors are passed to onError too;
// the loop returns once the endpoint is closed.
func (c *CompositeDevice) RecvLoop(deadline func() time.Time, onFrame func(reportID byte, payload []byte), onError func(error)) {
	buf := make([]byte, CompositeRecvLength)
	for {
		n, err := c.endpoint.readFrame(buf, deadline())
		if err != nil {
			if onError != nil {
				onError(err)
			}
			if isClosedErr(err) {
				return
			}
			continue
		}
		if n != len(buf) {
			if onError != nil {
				onError(file.NewIgnorableError(c.endpoint.path, "short composite read"))
			}
			continue
		}
		if onFrame != nil {
			onFrame(buf[0], buf[1:])
		}
	}
}

func isClosedErr(err error) bool {
	return bytes.Contains([]byte(err.Error()), []byte("file already closed"))
}
