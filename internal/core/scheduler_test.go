package core

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JonMunkholm/conform/internal/testutil"
)

type countingLoader struct {
	*fakeLoader
	replaces atomic.Int32
}

func (c *countingLoader) Replace(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	c.replaces.Add(1)
	return c.fakeLoader.Replace(ctx, table, columns, rows)
}

func TestStartScheduler_Disabled(t *testing.T) {
	setupRegistry(t, staticTable("crm_cust_info", "CRM", 1))
	loader := &countingLoader{fakeLoader: newFakeLoader()}
	svc := NewService(nil, loader, WithLogger(testutil.NewTestLogger(t)))

	done := make(chan struct{})
	go func() {
		svc.StartScheduler(context.Background(), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler with zero interval did not return")
	}
	if n := loader.replaces.Load(); n != 0 {
		t.Errorf("replaces = %d, want 0", n)
	}
}

func TestStartScheduler_RunsUntilCancelled(t *testing.T) {
	setupRegistry(t, staticTable("crm_cust_info", "CRM", 1))
	loader := &countingLoader{fakeLoader: newFakeLoader()}
	svc := NewService(nil, loader, WithLogger(testutil.NewTestLogger(t)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartScheduler(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for loader.replaces.Load() < 2 {
		select {
		case <-deadline:
			cancel()
			t.Fatal("scheduler did not run twice")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}

func TestScheduledRun_SkipsWhenBusy(t *testing.T) {
	setupRegistry(t, staticTable("crm_cust_info", "CRM", 1))
	silver := newFakeLoader()
	svc := newTestService(t, silver)

	if err := svc.limiter.Acquire(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer svc.limiter.Release()

	svc.scheduledRun(context.Background())
	if _, ok := silver.get("crm_cust_info"); ok {
		t.Error("scheduled run ran while another run held the slot")
	}
}
