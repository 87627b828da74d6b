// SPDX-License-Identifier: BSD-3-Clause

package kvmsrv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ip-kvm-go/usbkvm/pkg/telemetry"
	"github.com/nats-io/nats.go/micro"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type setKeyRequest struct {
	UsageID uint16 `json:"usage_id"`
	Down    bool   `json:"down"`
}

type changedResponse struct {
	Changed bool `json:"changed"`
}

type setButtonRequest struct {
	ButtonID uint16 `json:"button_id"`
	Down     bool   `json:"down"`
}

type mouseAbsoluteRequest struct {
	X     uint16 `json:"x"`
	Y     uint16 `json:"y"`
	Wheel int8   `json:"wheel"`
}

type mouseRelativeRequest struct {
	X     int8 `json:"x"`
	Y     int8 `json:"y"`
	Wheel int8 `json:"wheel"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type ledSnapshotResponse struct {
	LED [0x20]byte `json:"led"`
}

// registerEndpoints wires the external contracts onto micro groups
// "keyboard", "mouse" and "led", nested under a group named by
// Config.NATSSubjectPrefix on svc.
func (s *KVMSrv) registerEndpoints(svc micro.Service) error {
	root := svc.AddGroup(s.cfg.cfg.NATSSubjectPrefix)

	kbGroup := root.AddGroup("keyboard")
	if err := kbGroup.AddEndpoint("set_key", micro.HandlerFunc(s.wrapHandler(s.handleSetKey))); err != nil {
		return fmt.Errorf("register keyboard.set_key: %w", err)
	}
	if err := kbGroup.AddEndpoint("set_sys_control_key", micro.HandlerFunc(s.wrapHandler(s.handleSetSysControlKey))); err != nil {
		return fmt.Errorf("register keyboard.set_sys_control_key: %w", err)
	}
	if err := kbGroup.AddEndpoint("send", micro.HandlerFunc(s.wrapHandler(s.handleKeyboardSend))); err != nil {
		return fmt.Errorf("register keyboard.send: %w", err)
	}
	if err := kbGroup.AddEndpoint("send_legacy", micro.HandlerFunc(s.wrapHandler(s.handleKeyboardSendLegacy))); err != nil {
		return fmt.Errorf("register keyboard.send_legacy: %w", err)
	}

	mouseGroup := root.AddGroup("mouse")
	if err := mouseGroup.AddEndpoint("set_button", micro.HandlerFunc(s.wrapHandler(s.handleSetButton))); err != nil {
		return fmt.Errorf("register mouse.set_button: %w", err)
	}
	if err := mouseGroup.AddEndpoint("send", micro.HandlerFunc(s.wrapHandler(s.handleMouseSend))); err != nil {
		return fmt.Errorf("register mouse.send: %w", err)
	}
	if err := mouseGroup.AddEndpoint("send_legacy", micro.HandlerFunc(s.wrapHandler(s.handleMouseSendLegacy))); err != nil {
		return fmt.Errorf("register mouse.send_legacy: %w", err)
	}

	ledGroup := root.AddGroup("led")
	if err := ledGroup.AddEndpoint("snapshot", micro.HandlerFunc(s.wrapHandler(s.handleLedSnapshot))); err != nil {
		return fmt.Errorf("register led.snapshot: %w", err)
	}

	return nil
}

// wrapHandler pulls the trace context out of the request the way other
// services in this module do (telemetry.GetCtxFromReq), starts a span
// per request, and recovers a handler panic into an error response
// instead of crashing the NATS dispatch goroutine.
func (s *KVMSrv) wrapHandler(handler func(context.Context, micro.Request)) micro.HandlerFunc {
	return func(req micro.Request) {
		ctx := telemetry.GetCtxFromReq(req)

		if s.tracer != nil {
			var span trace.Span
			ctx, span = s.tracer.Start(ctx, "kvmsrv.handleRequest")
			span.SetAttributes(attribute.String("subject", req.Subject()))
			defer span.End()
		}

		defer func() {
			if r := recover(); r != nil {
				s.respondError(req, fmt.Errorf("%w: panic: %v", ErrOperationFailed, r))
			}
		}()

		handler(ctx, req)
	}
}

func (s *KVMSrv) respondError(req micro.Request, err error) {
	if respErr := req.Error("500", err.Error(), nil); respErr != nil && s.logger != nil {
		s.logger.Error("failed to send error response", "error", respErr)
	}
}

func (s *KVMSrv) respondJSON(req micro.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.respondError(req, fmt.Errorf("%w: marshal response: %w", ErrOperationFailed, err))
		return
	}
	if err := req.Respond(data); err != nil && s.logger != nil {
		s.logger.Error("failed to send response", "error", err)
	}
}

func (s *KVMSrv) decodeJSON(req micro.Request, v any) bool {
	if err := json.Unmarshal(req.Data(), v); err != nil {
		s.respondError(req, fmt.Errorf("%w: %w", ErrInvalidRequest, err))
		return false
	}
	return true
}

func (s *KVMSrv) handleSetKey(_ context.Context, req micro.Request) {
	var in setKeyRequest
	if !s.decodeJSON(req, &in) {
		return
	}
	changed := s.devices.keyboard.SetKey(in.UsageID, in.Down)
	s.respondJSON(req, changedResponse{Changed: changed})
}

func (s *KVMSrv) handleSetSysControlKey(_ context.Context, req micro.Request) {
	var in setKeyRequest
	if !s.decodeJSON(req, &in) {
		return
	}
	changed := s.devices.keyboard.SetSysControlKey(in.UsageID, in.Down)
	s.respondJSON(req, changedResponse{Changed: changed})
}

// handleKeyboardSend and the other send_* handlers apply the core's
// per-report send timeout: Send/SendLegacy already race the write
// against a deadline internally, so a host that stopped reading
// reports back as a non-fatal {ok: false} rather than blocking the
// NATS dispatch goroutine.
func (s *KVMSrv) handleKeyboardSend(_ context.Context, req micro.Request) {
	err := s.devices.keyboard.Send(s.devices.deadline())
	s.respondSendResult(req, err)
}

func (s *KVMSrv) handleKeyboardSendLegacy(_ context.Context, req micro.Request) {
	err := s.devices.keyboard.SendLegacy(s.devices.deadline())
	s.respondSendResult(req, err)
}

func (s *KVMSrv) handleSetButton(_ context.Context, req micro.Request) {
	var in setButtonRequest
	if !s.decodeJSON(req, &in) {
		return
	}
	changed := s.devices.mouse.SetButton(in.ButtonID, in.Down)
	s.respondJSON(req, changedResponse{Changed: changed})
}

// handleMouseSend stages an absolute-position report for the composite
// endpoint and answers {ok: true} at once; the composite send loop
// writes it to the wire afterwards.
func (s *KVMSrv) handleMouseSend(_ context.Context, req micro.Request) {
	var in mouseAbsoluteRequest
	if !s.decodeJSON(req, &in) {
		return
	}
	s.devices.composite.PublishMouse(in.X, in.Y, in.Wheel)
	s.respondJSON(req, okResponse{OK: true})
}

func (s *KVMSrv) handleMouseSendLegacy(_ context.Context, req micro.Request) {
	var in mouseRelativeRequest
	if !s.decodeJSON(req, &in) {
		return
	}
	err := s.devices.mouse.SendLegacy(in.X, in.Y, in.Wheel, s.devices.deadline())
	s.respondSendResult(req, err)
}

func (s *KVMSrv) handleLedSnapshot(_ context.Context, req micro.Request) {
	snapshot := s.devices.keyboard.SubscribeLed().Get()
	s.respondJSON(req, ledSnapshotResponse{LED: snapshot})
}

func (s *KVMSrv) respondSendResult(req micro.Request, err error) {
	if err != nil && s.logger != nil {
		s.logger.Warn("report send did not complete", "error", err)
	}
	s.respondJSON(req, okResponse{OK: err == nil})
}
