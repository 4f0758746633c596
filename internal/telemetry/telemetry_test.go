package telemetry

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	for _, endpoint := range []string{"", "   "} {
		providers, err := NewProviders(context.Background(), endpoint, "test-service", false, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if providers.TracerProvider == nil || providers.MeterProvider == nil || providers.Shutdown == nil {
			t.Fatalf("providers incomplete: %+v", providers)
		}
		if err := providers.Shutdown(context.Background()); err != nil {
			t.Errorf("shutdown should be a no-op, got %v", err)
		}
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	for _, endpoint := range []string{"://invalid", "http://[invalid", "http://"} {
		if _, err := NewProviders(context.Background(), endpoint, "test-service", false, zerolog.Nop()); err == nil {
			t.Errorf("NewProviders(%q) should fail", endpoint)
		}
	}
}

func TestOTLPTarget(t *testing.T) {
	tests := []struct {
		endpoint string
		target   string
		insecure bool
	}{
		{"localhost:4317", "localhost:4317", true},
		{"http://localhost:4317", "localhost:4317", true},
		{"https://collector:4317", "collector:4317", false},
		{"http://localhost:4317/v1/traces", "localhost:4317", true},
		{"http://localhost:4317?param=value", "localhost:4317", true},
	}
	for _, tt := range tests {
		target, insecure, err := otlpTarget(tt.endpoint)
		if err != nil {
			t.Errorf("otlpTarget(%q): %v", tt.endpoint, err)
			continue
		}
		if target != tt.target || insecure != tt.insecure {
			t.Errorf("otlpTarget(%q) = %q, %v; want %q, %v", tt.endpoint, target, insecure, tt.target, tt.insecure)
		}
	}
}

func TestSetGlobal(t *testing.T) {
	oldTP, oldMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(oldTP)
		otel.SetMeterProvider(oldMP)
	})

	providers, err := NewProviders(context.Background(), "", "test-service", false, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewProviders: %v", err)
	}
	providers.SetGlobal()
	if otel.GetTracerProvider() != providers.TracerProvider {
		t.Error("TracerProvider should be installed globally")
	}
	if otel.GetMeterProvider() != providers.MeterProvider {
		t.Error("MeterProvider should be installed globally")
	}
}

func TestSetGlobal_PartialProviders(t *testing.T) {
	oldTP, oldMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(oldTP)
		otel.SetMeterProvider(oldMP)
	})

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	(&Providers{TracerProvider: tp}).SetGlobal()
	if otel.GetTracerProvider() != tp {
		t.Error("TracerProvider should be updated")
	}
	if otel.GetMeterProvider() != oldMP {
		t.Error("MeterProvider should not change when nil")
	}
}
