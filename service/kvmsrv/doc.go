// SPDX-License-Identifier: BSD-3-Clause

// Package kvmsrv exposes the USB HID core (pkg/usb) as a supervised BMC
// service: it provisions a composite USB gadget, opens its HID device
// pipes, and republishes the three external contracts the core defines
// — keyboard key/send, mouse button/send, and LED-state subscription —
// as NATS micro endpoints on the in-process IPC bus every other
// service in this module already uses.
//
// # Service Overview
//
// On Run, kvmsrv:
//   - builds a GadgetInfo from Config via pkg/usb.GadgetConfig.Build
//   - binds to the first entry under /sys/class/udc and applies the
//     gadget to ConfigFS
//   - waits for the resulting /dev/hidgN nodes to appear
//   - opens the composite, full-keyboard, legacy-keyboard and
//     legacy-mouse device pipes
//   - runs the composite send/receive loops and the legacy LED receive
//     loop under a cirello.io/oversight supervision tree
//   - registers NATS micro endpoints under Config.NATSSubjectPrefix
//
// On shutdown it aborts the supervision tree, closes the device pipes,
// and runs ConfigFS cleanup — mirroring the core's own ordered-shutdown
// invariant (abort tasks, drop handles, clean up).
//
// # Configuration
//
//	srv := kvmsrv.New(
//		kvmsrv.WithName("kvm0"),
//		kvmsrv.WithConfig(kvmsrv.DefaultConfig()),
//	)
//
// # NATS Endpoints
//
// With the default "kvm" prefix:
//
//	kvm.keyboard.set_key             {usage_id, down}   -> {changed}
//	kvm.keyboard.set_sys_control_key {usage_id, down}   -> {changed}
//	kvm.keyboard.send                {}                 -> {ok}
//	kvm.keyboard.send_legacy         {}                 -> {ok}
//	kvm.mouse.set_button             {button_id, down}  -> {changed}
//	kvm.mouse.send                   {x, y, wheel}       -> {ok}
//	kvm.mouse.send_legacy            {x, y, wheel}       -> {ok}
//	kvm.led.snapshot                 {}                 -> {led: [32]byte}
//
// Every change the inbound LED watch channel delivers is additionally
// published on "<prefix>.led.changed", so subscribers do not need to
// poll kvm.led.snapshot.
//
// This package is explicitly NOT the HTTP/WebSocket front-end, the
// video pipeline, or the browser UI — those are non-goals of the USB
// HID core this service wraps and are left to other components.
package kvmsrv
