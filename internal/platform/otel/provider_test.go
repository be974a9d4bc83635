package otel

import (
	"context"
	"testing"

	gootel "go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetupNoop(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "endpoint empty", cfg: Config{Enabled: true}},
		{name: "endpoint blank", cfg: Config{Enabled: true, Endpoint: "   "}},
		{name: "disabled", cfg: Config{Endpoint: "http://localhost:4318"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if tc.cfg.Active() {
				t.Fatalf("Active() = true, want false")
			}
			shutdown, err := Setup(context.Background(), "web-test", tc.cfg)
			if err != nil {
				t.Fatalf("Setup() error = %v", err)
			}
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			if err := shutdown(ctx); err != nil {
				t.Fatalf("noop shutdown error = %v", err)
			}
		})
	}
}

func TestSamplerByRatio(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ratio float64
		want  string
	}{
		{ratio: 1, want: sdktrace.AlwaysSample().Description()},
		{ratio: 2, want: sdktrace.AlwaysSample().Description()},
		{ratio: 0, want: sdktrace.NeverSample().Description()},
		{ratio: 0.25, want: sdktrace.ParentBased(sdktrace.TraceIDRatioBased(0.25)).Description()},
	}
	for _, tc := range tests {
		if got := (Config{Sampling: tc.ratio}).sampler().Description(); got != tc.want {
			t.Fatalf("sampler(%v) = %q, want %q", tc.ratio, got, tc.want)
		}
	}
}

func TestSetupRegistersSDKProvider(t *testing.T) {
	previous := gootel.GetTracerProvider()
	t.Cleanup(func() { gootel.SetTracerProvider(previous) })

	// 192.0.2.0/24 is reserved for documentation, so nothing is exported.
	shutdown, err := Setup(context.Background(), "web-test", Config{
		Endpoint: "http://192.0.2.1:4318",
		Enabled:  true,
		Sampling: 1,
	})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if _, ok := gootel.GetTracerProvider().(*sdktrace.TracerProvider); !ok {
		t.Fatalf("global tracer provider = %T, want *sdktrace.TracerProvider", gootel.GetTracerProvider())
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = shutdown(ctx)
}
