// SPDX-License-Identifier: BSD-3-Clause

// Package log provides structured logging with dual output to the console
// and OpenTelemetry. The package is built around Go's standard library slog
// package: console output goes through a zerolog writer, fanned out
// alongside an OpenTelemetry slog bridge via samber/slog-multi, so every log
// call produces both a human-readable line and structured telemetry data.
//
// # Basic Usage
//
//	logger := log.NewDefaultLogger()
//	logger.Info("gadget provisioned", "name", "kvm-gadget", "udc", udc)
//
// Using the global logger:
//
//	logger := log.GetGlobalLogger()
//	logger.Info("report send timed out", "endpoint", "composite")
//
// # Oversight Integration
//
// cirello.io/oversight/v2 supervises the device context's background report
// loops. NewOversightLogger adapts a *slog.Logger to the oversight.Logger
// interface so restarts and task failures land in the same log stream:
//
//	tree := oversight.New(
//		oversight.WithLogger(log.NewOversightLogger(logger)),
//	)
//
// # Thread Safety
//
// All logger instances are safe for concurrent use from multiple goroutines.
package log
