// SPDX-License-Identifier: BSD-3-Clause

package kvmsrv

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cirello.io/oversight/v2"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ip-kvm-go/usbkvm/pkg/log"
	"github.com/ip-kvm-go/usbkvm/service"
)

// Compile-time assertion that KVMSrv implements service.Service.
var _ service.Service = (*KVMSrv)(nil)

// KVMSrv wraps the USB HID core as a supervised, NATS-addressable BMC
// service. See doc.go for the endpoint table and lifecycle summary.
type KVMSrv struct {
	cfg *config

	devices *deviceContext

	nc           *nats.Conn
	microService micro.Service

	logger *slog.Logger
	tracer trace.Tracer

	cancel  context.CancelFunc
	started bool
	mu      sync.Mutex
}

// New creates a new KVMSrv instance with the provided options.
func New(opts ...Option) *KVMSrv {
	c := &config{
		name: "kvmsrv",
		cfg:  DefaultConfig(),
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	if c.cfg == nil {
		c.cfg = DefaultConfig()
	}
	return &KVMSrv{cfg: c}
}

// Name returns the configured service name.
func (s *KVMSrv) Name() string {
	return s.cfg.name
}

// Run provisions the USB gadget, opens its HID device pipes, starts the
// supervised background report loops, and registers the NATS micro
// endpoints described in doc.go. It blocks until ctx is canceled or the
// supervision tree gives up, then runs ordered shutdown: drain the
// lifecycle, close device handles, clean up ConfigFS.
func (s *KVMSrv) Run(ctx context.Context, ipcConn nats.InProcessConnProvider) (err error) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrServiceAlreadyStarted
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.tracer = otel.Tracer(s.cfg.name)
	ctx, span := s.tracer.Start(ctx, "kvmsrv.Run")
	defer span.End()

	s.logger = log.GetGlobalLogger().With("service", s.cfg.name)
	s.logger.InfoContext(ctx, "starting KVM HID core service", "gadget", s.cfg.cfg.USBGadgetName)

	if verr := s.cfg.cfg.Validate(); verr != nil {
		span.RecordError(verr)
		return fmt.Errorf("%w: %w", ErrInvalidConfiguration, verr)
	}

	sm := newLifecycle()
	if ferr := fire(ctx, sm, triggerProvision); ferr != nil {
		span.RecordError(ferr)
		return fmt.Errorf("%w: %w", ErrUSBGadgetInitFailed, ferr)
	}

	devices, perr := provision(s.cfg.cfg)
	if perr != nil {
		span.RecordError(perr)
		return fmt.Errorf("%w: %w", ErrUSBGadgetInitFailed, perr)
	}
	s.devices = devices

	defer func() {
		shutdownCtx := context.WithoutCancel(ctx)
		_ = fire(shutdownCtx, sm, triggerDrain)
		s.devices.close()
		if cerr := s.devices.cleanup(); cerr != nil {
			s.logger.ErrorContext(shutdownCtx, "gadget cleanup failed", "error", cerr)
		}
		_ = fire(shutdownCtx, sm, triggerStop)
	}()

	if werr := s.devices.waitAndOpen(ctx, s.cfg.cfg.HIDDeviceWaitTimeout); werr != nil {
		span.RecordError(werr)
		return fmt.Errorf("%w: %w", ErrResourceUnavailable, werr)
	}
	if ferr := fire(ctx, sm, triggerBind); ferr != nil {
		span.RecordError(ferr)
		return fmt.Errorf("%w: %w", ErrUSBGadgetInitFailed, ferr)
	}

	nc, nerr := nats.Connect("", nats.InProcessServer(ipcConn))
	if nerr != nil {
		span.RecordError(nerr)
		return fmt.Errorf("%w: %w", ErrNATSConnectionFailed, nerr)
	}
	s.nc = nc
	defer nc.Drain() //nolint:errcheck

	svc, serr := micro.AddService(nc, micro.Config{
		Name:        s.cfg.name,
		Description: "USB HID core: composite keyboard/mouse gadget over NATS",
		Version:     "1.0.0",
	})
	if serr != nil {
		span.RecordError(serr)
		return fmt.Errorf("failed to create micro service: %w", serr)
	}
	s.microService = svc

	if rerr := s.registerEndpoints(svc); rerr != nil {
		span.RecordError(rerr)
		return rerr
	}

	tree := oversight.New(
		oversight.NeverHalt(),
		oversight.DefaultRestartStrategy(),
		oversight.WithLogger(log.NewOversightLogger(s.logger)),
	)

	onLoopError := func(stage string) func(error) {
		return func(err error) {
			s.logger.WarnContext(ctx, "HID report loop error", "stage", stage, "error", err)
		}
	}

	if aerr := tree.Add(s.devices.compositeSendLoop(onLoopError("composite-send")), oversight.Transient(), oversight.Timeout(10*time.Second), "composite-send"); aerr != nil {
		return fmt.Errorf("add composite send loop to supervision tree: %w", aerr)
	}
	if aerr := tree.Add(s.devices.compositeRecvLoop(onLoopError("composite-recv")), oversight.Transient(), oversight.Timeout(10*time.Second), "composite-recv"); aerr != nil {
		return fmt.Errorf("add composite recv loop to supervision tree: %w", aerr)
	}
	if aerr := tree.Add(s.devices.legacyKeyboardRecvLoop(onLoopError("legacy-keyboard-recv")), oversight.Transient(), oversight.Timeout(10*time.Second), "legacy-keyboard-recv"); aerr != nil {
		return fmt.Errorf("add legacy keyboard recv loop to supervision tree: %w", aerr)
	}

	if ferr := fire(ctx, sm, triggerStart); ferr != nil {
		span.RecordError(ferr)
		return fmt.Errorf("%w: %w", ErrUSBGadgetInitFailed, ferr)
	}

	treeDone := make(chan error, 1)
	go func() { treeDone <- tree.Start(ctx) }()

	go s.publishLedChanges(ctx)

	span.SetAttributes(
		attribute.String("service.name", s.cfg.name),
		attribute.String("usb.gadget_name", s.cfg.cfg.USBGadgetName),
		attribute.String("usb.udc", s.devices.gadget.UDC),
	)
	s.logger.InfoContext(ctx, "KVM HID core service started", "udc", s.devices.gadget.UDC)

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-treeDone:
	}

	s.logger.InfoContext(context.WithoutCancel(ctx), "KVM HID core service stopping")
	return err
}

// publishLedChanges republishes every LED snapshot the core observes
// onto "<prefix>.led.changed" so subscribers don't have to poll
// kvm.led.snapshot. It returns once the LED watch channel is closed,
// which happens as part of the deferred shutdown in Run.
func (s *KVMSrv) publishLedChanges(ctx context.Context) {
	watch := s.devices.keyboard.SubscribeLed()
	subject := s.cfg.cfg.NATSSubjectPrefix + ".led.changed"

	var version uint64
	for {
		snapshot, v, ok := watch.Recv(version)
		if !ok {
			return
		}
		version = v

		data, err := json.Marshal(ledSnapshotResponse{LED: snapshot})
		if err != nil {
			s.logger.WarnContext(ctx, "failed to marshal LED snapshot", "error", err)
			continue
		}
		if err := s.nc.Publish(subject, data); err != nil {
			s.logger.WarnContext(ctx, "failed to publish LED change", "error", err)
		}
	}
}
