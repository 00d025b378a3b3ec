package telemetry

import (
	"context"
	"testing"

	"github.com/cyberregistro/ledger/internal/config"
)

func TestInitDisabledReturnsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), config.TelemetryConfig{Enabled: false})
	if err != nil {
		t.Fatalf("init disabled telemetry failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("noop shutdown failed: %v", err)
	}
}
