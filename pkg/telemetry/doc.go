// SPDX-License-Identifier: BSD-3-Clause

// Package telemetry provides distributed-tracing context propagation for
// NATS micro service requests. It extracts the W3C trace context that the
// caller's OpenTelemetry propagator injected into the request headers, so a
// handler's span nests under the caller's trace instead of starting a new
// one.
//
// # Usage
//
//	svc.AddEndpoint("keyboard.set_key", micro.HandlerFunc(func(req micro.Request) {
//		ctx := telemetry.GetCtxFromReq(req)
//		ctx, span := tracer.Start(ctx, "handleSetKey")
//		defer span.End()
//		// ...
//	}))
package telemetry
