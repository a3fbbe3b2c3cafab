// © Copyright 2025-2026, Query.Farm LLC - https://query.farm
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Query-farm/vdbparam/conformance"
	"github.com/Query-farm/vdbparam/vdbparam"
	vdbotel "github.com/Query-farm/vdbparam/vdbparam/otel"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func main() {
	casesPath := flag.String("cases", "", "YAML case file (default: built-in suite)")
	outDir := flag.String("out", "", "directory receiving one Arrow IPC stream per successful case")
	compress := flag.String("compress", "none", "stream framing: none, zstd or lz4")
	trace := flag.Bool("trace", false, "print spans and metrics through the OpenTelemetry stdout exporters")
	verbose := flag.Bool("v", false, "log every conversion")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Catch SIGTERM/SIGINT so a long suite stops between cases.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	failed, err := run(ctx, logger, *casesPath, *outDir, *compress, *trace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "conformance: %v\n", err)
		os.Exit(2)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, casesPath, outDir, compress string, trace bool) (int, error) {
	comp, err := vdbparam.ParseCompression(compress)
	if err != nil {
		return 0, err
	}

	cases, err := loadCases(casesPath)
	if err != nil {
		return 0, err
	}

	conv := vdbparam.NewConverter()
	conv.SetLogger(logger)

	if trace {
		shutdown, err := instrument(conv)
		if err != nil {
			return 0, err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("flushing telemetry", "err", err)
			}
		}()
	}

	if outDir != "" {
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return 0, fmt.Errorf("creating output directory: %w", err)
		}
	}

	failed := 0
	for i := range cases {
		if err := ctx.Err(); err != nil {
			return failed, err
		}
		c := &cases[i]
		req, runErr := c.Run(ctx, conv)
		if err := c.Check(req, runErr); err != nil {
			failed++
			fmt.Printf("FAIL %s: %v\n", c.Name, err)
			continue
		}
		fmt.Printf("ok   %s\n", c.Name)

		if outDir != "" && req != nil {
			if err := writeRequest(filepath.Join(outDir, c.Name+".arrow"), req, comp); err != nil {
				return failed, err
			}
		}
	}
	fmt.Printf("%d cases, %d failed\n", len(cases), failed)
	return failed, nil
}

func loadCases(path string) ([]conformance.Case, error) {
	if path == "" {
		return conformance.Builtin()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening case file: %w", err)
	}
	defer f.Close()
	return conformance.Load(f)
}

func writeRequest(path string, req *vdbparam.InsertRequest, comp vdbparam.Compression) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := vdbparam.WriteInsertRequest(f, req, vdbparam.WithCompression(comp)); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// instrument installs an OpenTelemetry hook backed by stdout exporters and
// returns a function flushing both providers.
func instrument(conv *vdbparam.Converter) (func(context.Context) error, error) {
	spanExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	metricExporter, err := stdoutmetric.New()
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(spanExporter))
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)))

	cfg := vdbotel.DefaultConfig()
	cfg.TracerProvider = tp
	cfg.MeterProvider = mp
	vdbotel.InstrumentConverter(conv, cfg)

	return func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return err
		}
		return mp.Shutdown(ctx)
	}, nil
}
