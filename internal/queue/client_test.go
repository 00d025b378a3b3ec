package queue

import (
	"testing"

	"github.com/cyberregistro/ledger/internal/config"
)

func TestDisabledClientSkipsEnqueue(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("client should be disabled")
	}
	if err := client.EnqueuePaymentConfirmed(PaymentConfirmedPayload{PaymentID: "pay_1"}); err != nil {
		t.Fatalf("disabled enqueue should be a no-op, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestBuildServerConfig(t *testing.T) {
	opt, cfg := BuildServerConfig(&config.QueueConfig{Host: "redis", Port: 6380, DB: 2, Concurrency: 4})
	if opt.Addr != "redis:6380" || opt.DB != 2 {
		t.Fatalf("unexpected redis opt: %+v", opt)
	}
	if cfg.Concurrency != 4 {
		t.Fatalf("expected concurrency 4 got %d", cfg.Concurrency)
	}
	if cfg.Queues[CriticalQueue] == 0 {
		t.Fatalf("expected default critical queue weight, got %+v", cfg.Queues)
	}
}

func TestPaymentConfirmedTaskRoundTrip(t *testing.T) {
	couponID := uint(7)
	task, err := NewPaymentConfirmedTask(PaymentConfirmedPayload{TransactionID: 3, UserID: 42, PaymentID: "pay_9", Quantity: 10, CouponID: &couponID})
	if err != nil {
		t.Fatalf("new task failed: %v", err)
	}
	if task.Type() != TaskPaymentConfirmed {
		t.Fatalf("unexpected task type %s", task.Type())
	}
	payload, err := ParsePaymentConfirmedPayload(task)
	if err != nil {
		t.Fatalf("parse payload failed: %v", err)
	}
	if payload.UserID != 42 || payload.Quantity != 10 || payload.CouponID == nil || *payload.CouponID != 7 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}
