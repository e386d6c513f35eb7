package telemetry

import (
	"context"
	"testing"

	"github.com/avalonarena/spectate/internal/config"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), "spectate-test", config.TelemetryConfig{})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if shutdown == nil {
		t.Fatal("no shutdown function returned")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown returned %v", err)
	}
}

func TestSetup_EnabledWithoutEndpointIsNoop(t *testing.T) {
	cfg := config.TelemetryConfig{Enabled: true}
	shutdown, err := Setup(context.Background(), "spectate-test", cfg)
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("no-op shutdown returned %v", err)
	}
}
