package audit

import (
	"context"
	"os"
	"testing"
)

func testLedger(t *testing.T) (*Ledger, func()) {
	t.Helper()
	dir, err := os.MkdirTemp("", "objectively-audit-test-*")
	if err != nil {
		t.Fatal(err)
	}
	l, err := Open(dir)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return l, func() {
		l.Close()
		os.RemoveAll(dir)
	}
}

func TestLedgerRecordsCreateAndDestroy(t *testing.T) {
	l, cleanup := testLedger(t)
	defer cleanup()

	ctx := context.Background()
	if err := l.Create(ctx, "workers", "uuid-1", 4096); err != nil {
		t.Fatal(err)
	}
	if err := l.Destroy(ctx, "workers", "uuid-1"); err != nil {
		t.Fatal(err)
	}

	events, err := l.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Kind != "destroy" || events[1].Kind != "create" {
		t.Fatalf("expected destroy then create newest-first, got %v, %v", events[0].Kind, events[1].Kind)
	}
}

func TestLedgerRecordsDonate(t *testing.T) {
	l, cleanup := testLedger(t)
	defer cleanup()

	ctx := context.Background()
	if err := l.Donate(ctx, "workers", "uuid-1", "archive", 128); err != nil {
		t.Fatal(err)
	}
	events, err := l.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != "donate" {
		t.Fatalf("expected a single donate event, got %v", events)
	}
}

func TestNilLedgerIsNoOp(t *testing.T) {
	var l *Ledger
	if err := l.Create(context.Background(), "x", "y", 0); err != nil {
		t.Fatalf("nil ledger Create should be a no-op, got %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("nil ledger Close should be a no-op, got %v", err)
	}
}
