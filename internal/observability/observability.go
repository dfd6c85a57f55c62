// Package observability configures the process-wide slog logger.
//
// Text and JSON output use the standard library handlers. The "otel" format
// routes records through the OpenTelemetry log SDK and prints them with the
// stdout exporter. Independently of the format, records can be exported via
// OTLP (HTTP or gRPC) to a collector.
package observability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// instrumentationName identifies records emitted through the OpenTelemetry bridge.
const instrumentationName = "github.com/florianilch/tavla"

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatOTel = "otel"
)

// Supported OTLP protocols.
const (
	ProtocolHTTP = "http"
	ProtocolGRPC = "grpc"
)

// ShutdownFunc flushes and releases logging resources.
type ShutdownFunc func(context.Context) error

// Option configures Instrument.
type Option func(*settings)

type settings struct {
	writer       io.Writer
	otlpEndpoint string
	otlpProtocol string
}

// WithWriter redirects local log output. Defaults to os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(s *settings) {
		s.writer = w
	}
}

// WithOTLP exports log records to an OTLP collector. An empty endpoint
// disables export.
func WithOTLP(endpoint, protocol string) Option {
	return func(s *settings) {
		s.otlpEndpoint = endpoint
		s.otlpProtocol = protocol
	}
}

// Instrument installs the default slog logger and the W3C trace context
// propagator. The returned ShutdownFunc must be called before exit to flush
// exported records.
func Instrument(ctx context.Context, level slog.Level, format string, opts ...Option) (ShutdownFunc, error) {
	s := &settings{
		writer:       os.Stderr,
		otlpProtocol: ProtocolHTTP,
	}
	for _, opt := range opts {
		opt(s)
	}

	var (
		handlers   []slog.Handler
		processors []sdklog.Processor
	)

	handlerOpts := &slog.HandlerOptions{Level: level}
	switch format {
	case FormatText, "":
		handlers = append(handlers, withTraceContext(slog.NewTextHandler(s.writer, handlerOpts)))
	case FormatJSON:
		handlers = append(handlers, withTraceContext(slog.NewJSONHandler(s.writer, handlerOpts)))
	case FormatOTel:
		exporter, err := stdoutlog.New(stdoutlog.WithWriter(s.writer))
		if err != nil {
			return nil, fmt.Errorf("creating stdout log exporter: %w", err)
		}
		processors = append(processors, sdklog.NewSimpleProcessor(exporter))
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}

	if s.otlpEndpoint != "" {
		exporter, err := newOTLPExporter(ctx, s.otlpEndpoint, s.otlpProtocol)
		if err != nil {
			return nil, err
		}
		processors = append(processors, sdklog.NewBatchProcessor(exporter))
	}

	shutdown := func(context.Context) error { return nil }
	if len(processors) > 0 {
		providerOpts := make([]sdklog.LoggerProviderOption, 0, len(processors))
		for _, p := range processors {
			providerOpts = append(providerOpts, sdklog.WithProcessor(minsev.NewLogProcessor(p, severity(level))))
		}
		provider := sdklog.NewLoggerProvider(providerOpts...)
		handlers = append(handlers, otelslog.NewHandler(instrumentationName, otelslog.WithLoggerProvider(provider)))
		shutdown = provider.Shutdown
	}

	var handler slog.Handler = fanout(handlers)
	if len(handlers) == 1 {
		handler = handlers[0]
	}
	slog.SetDefault(slog.New(handler))

	otel.SetTextMapPropagator(propagation.TraceContext{})

	return shutdown, nil
}

func newOTLPExporter(ctx context.Context, endpoint, protocol string) (sdklog.Exporter, error) {
	// A bare host:port is a plaintext local collector, URLs carry their own scheme
	withURL := strings.Contains(endpoint, "://")

	switch protocol {
	case ProtocolHTTP, "":
		opts := []otlploghttp.Option{otlploghttp.WithEndpointURL(endpoint)}
		if !withURL {
			opts = []otlploghttp.Option{otlploghttp.WithEndpoint(endpoint), otlploghttp.WithInsecure()}
		}
		exporter, err := otlploghttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating OTLP/HTTP log exporter: %w", err)
		}
		return exporter, nil
	case ProtocolGRPC:
		opts := []otlploggrpc.Option{otlploggrpc.WithEndpointURL(endpoint)}
		if !withURL {
			opts = []otlploggrpc.Option{otlploggrpc.WithEndpoint(endpoint), otlploggrpc.WithInsecure()}
		}
		exporter, err := otlploggrpc.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("creating OTLP/gRPC log exporter: %w", err)
		}
		return exporter, nil
	default:
		return nil, errors.New("unsupported OTLP protocol: " + protocol)
	}
}

// severity maps a slog level onto the OpenTelemetry severity scale for minsev.
type severity slog.Level

// Compile-time check that severity can drive the minimum severity processor.
var _ minsev.Severitier = severity(0)

func (s severity) Severity() log.Severity {
	switch l := slog.Level(s); {
	case l >= slog.LevelError:
		return log.SeverityError
	case l >= slog.LevelWarn:
		return log.SeverityWarn
	case l >= slog.LevelInfo:
		return log.SeverityInfo
	default:
		return log.SeverityDebug
	}
}
