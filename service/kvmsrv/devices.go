// SPDX-License-Identifier: BSD-3-Clause

package kvmsrv

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ip-kvm-go/usbkvm/pkg/id"
	"github.com/ip-kvm-go/usbkvm/pkg/usb"
)

// deviceContext is C7: it owns the applied gadget and the HID device
// pipes opened against it, and is the only thing that ever mutates
// keyboard/mouse state or pushes reports onto the wire. handlers.go
// only ever reaches keyboard/mouse/composite through this struct.
type deviceContext struct {
	baseDir string
	gadget  *usb.GadgetInfo

	keyboard  *usb.KeyboardDevice
	mouse     *usb.MouseDevice
	composite *usb.CompositeDevice

	sendTimeout time.Duration
}

// provision builds a GadgetInfo from cfg, resolves a serial number if
// the caller left it unset, binds it to the first available UDC, and
// applies it to ConfigFS. It
// does not open any /dev/hidgN node yet — that only happens once the
// kernel has finished publishing them (see waitAndOpen).
func provision(cfg *Config) (*deviceContext, error) {
	gcfg := cfg.ToUSBGadgetConfig()

	if gcfg.SerialNumber == "" {
		serial, err := id.GetOrCreatePersistentID("serial", cfg.USBSerialPersistPath)
		if err != nil {
			return nil, fmt.Errorf("resolve persistent serial number: %w", err)
		}
		gcfg.SerialNumber = serial
	}

	gadget := gcfg.Build()

	udc, err := usb.FindAvailableUDC()
	if err != nil {
		return nil, fmt.Errorf("find available UDC: %w", err)
	}
	gadget.UDC = udc

	baseDir := usb.GadgetDir(cfg.USBGadgetName)
	if err := gadget.ApplyConfig(baseDir); err != nil {
		_ = gadget.Cleanup(baseDir)
		return nil, fmt.Errorf("apply gadget config: %w", err)
	}

	return &deviceContext{
		baseDir:     baseDir,
		gadget:      gadget,
		sendTimeout: cfg.SendTimeout,
	}, nil
}

// waitAndOpen polls for every HID function's /dev/hidgN node to appear
// (the kernel creates them asynchronously after UDC bind) and opens the
// composite, full-keyboard, legacy-keyboard and legacy-mouse pipes.
func (d *deviceContext) waitAndOpen(ctx context.Context, waitTimeout time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, waitTimeout)
	defer cancel()

	fullKeyboardPath, err := d.functionDevPath(waitCtx, usb.FunctionNameKeyboardFull)
	if err != nil {
		return err
	}
	legacyKeyboardPath, err := d.functionDevPath(waitCtx, usb.FunctionNameKeyboardLegacy)
	if err != nil {
		return err
	}
	legacyMousePath, err := d.functionDevPath(waitCtx, usb.FunctionNameMouseLegacy)
	if err != nil {
		return err
	}
	compositePath, err := d.functionDevPath(waitCtx, usb.FunctionNameComposite)
	if err != nil {
		return err
	}

	keyboard, err := usb.NewKeyboardDevice(fullKeyboardPath, legacyKeyboardPath)
	if err != nil {
		return fmt.Errorf("open keyboard device: %w", err)
	}
	mouse, err := usb.NewMouseDevice(legacyMousePath)
	if err != nil {
		keyboard.Close()
		return fmt.Errorf("open mouse device: %w", err)
	}
	composite, err := usb.NewCompositeDevice(compositePath, keyboard, mouse)
	if err != nil {
		keyboard.Close()
		mouse.Close()
		return fmt.Errorf("open composite device: %w", err)
	}

	d.keyboard, d.mouse, d.composite = keyboard, mouse, composite
	return nil
}

func (d *deviceContext) functionDevPath(ctx context.Context, name string) (string, error) {
	fn, ok := d.gadget.Functions[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", usb.ErrFunctionNotRegistered, name)
	}
	hidOpts, ok := fn.(*usb.FunctionHidOpts)
	if !ok {
		return "", fmt.Errorf("function %s is not a HID function", name)
	}
	path := hidOpts.DevPath()
	if err := usb.WaitForHidDevice(ctx, path); err != nil {
		return "", fmt.Errorf("wait for %s: %w", path, err)
	}
	return path, nil
}

// close releases the HID device handles, waking any blocked send/recv
// loops and LED subscribers.
func (d *deviceContext) close() {
	if d.composite != nil {
		d.composite.Close()
	}
	if d.mouse != nil {
		d.mouse.Close()
	}
	if d.keyboard != nil {
		d.keyboard.Close()
	}
}

// cleanup tears down the ConfigFS tree. It is robust to having been
// called after a partial provision failure.
func (d *deviceContext) cleanup() error {
	return d.gadget.Cleanup(d.baseDir)
}

func (d *deviceContext) deadline() time.Time {
	return time.Now().Add(d.sendTimeout)
}

// compositeSendLoop is the oversight.ChildProcess that republishes
// every staged composite frame onto the wire. It returns when the
// composite endpoint is closed during shutdown.
func (d *deviceContext) compositeSendLoop(onError func(error)) func(context.Context) error {
	return func(ctx context.Context) error {
		d.composite.SendLoop(d.deadline, onError)
		return nil
	}
}

// compositeRecvLoop demultiplexes inbound composite frames by report
// ID, folding keyboard-LED frames back into keyboard state.
func (d *deviceContext) compositeRecvLoop(onError func(error)) func(context.Context) error {
	return func(ctx context.Context) error {
		d.composite.RecvLoop(d.deadline, func(reportID byte, payload []byte) {
			switch reportID {
			case usb.CompositeReportIDKeyboard:
				d.composite.ApplyInboundKeyboardReport(payload)
			default:
				if onError != nil {
					onError(fmt.Errorf("composite recv: unrecognized report id 0x%02x", reportID))
				}
			}
		}, onError)
		return nil
	}
}

// legacyKeyboardRecvLoop reads boot-protocol LED frames off the legacy
// keyboard endpoint until ctx is canceled or the endpoint is closed.
func (d *deviceContext) legacyKeyboardRecvLoop(onError func(error)) func(context.Context) error {
	return func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			err := d.keyboard.RecvLegacy(d.deadline())
			switch {
			case err == nil:
			case errors.Is(err, os.ErrDeadlineExceeded):
				// Idle poll interval elapsed with no LED frame; not an error.
			case strings.Contains(err.Error(), "file already closed"):
				return nil
			default:
				if onError != nil {
					onError(err)
				}
			}
		}
	}
}
