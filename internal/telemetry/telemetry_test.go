package telemetry

import (
	"context"
	"testing"

	"github.com/AyushPoddar351/E-Commerce-Assistant/config"
)

func TestInit_Disabled(t *testing.T) {
	p, err := Init(config.TelemetryConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if p == nil {
		t.Fatal("expected noop providers, got nil")
	}
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("noop Shutdown must not fail: %v", err)
	}
}

func TestShutdown_NilReceiver(t *testing.T) {
	var p *Providers
	if err := p.Shutdown(context.Background()); err != nil {
		t.Errorf("nil Shutdown must not fail: %v", err)
	}
}
