package plugin_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xraph/skydesk/account"
	"github.com/xraph/skydesk/plugin"
	"github.com/xraph/skydesk/reservation"
)

type creditCounter struct {
	name    string
	credits atomic.Int64
	total   atomic.Int64
	err     error
}

func (c *creditCounter) Name() string { return c.name }

func (c *creditCounter) OnPointsCredited(_ context.Context, acct *account.Account, amount int64) error {
	c.credits.Add(1)
	c.total.Add(amount)
	acct.Balance = -1
	return c.err
}

type slowBooker struct{ release chan struct{} }

func (s *slowBooker) Name() string { return "slow" }

func (s *slowBooker) OnReservationCreated(_ context.Context, _ *reservation.Reservation) error {
	<-s.release
	return nil
}

type panicky struct{}

func (panicky) Name() string { return "panicky" }

func (panicky) OnPointsReset(context.Context, *account.Account) error { panic("boom") }

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := plugin.NewRegistry()
	if err := r.Register(&creditCounter{name: "a"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(&creditCounter{name: "a"}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d, want 1", r.Count())
	}
	if r.Get("a") == nil || r.Get("missing") != nil {
		t.Error("Get returned the wrong plugin")
	}
	if len(r.List()) != 1 {
		t.Errorf("List len = %d", len(r.List()))
	}
}

func TestEmitDispatchesToImplementers(t *testing.T) {
	r := plugin.NewRegistry()
	ok := &creditCounter{name: "ok"}
	failing := &creditCounter{name: "failing", err: errors.New("sink down")}
	_ = r.Register(ok)
	_ = r.Register(failing)

	acct := &account.Account{ID: 1, Balance: 40}
	r.EmitPointsCredited(context.Background(), acct, 40)
	r.EmitPointsReset(context.Background(), acct)

	if ok.credits.Load() != 1 || failing.credits.Load() != 1 {
		t.Errorf("credits = %d/%d, want 1/1", ok.credits.Load(), failing.credits.Load())
	}
	if ok.total.Load() != 40 {
		t.Errorf("total = %d, want 40", ok.total.Load())
	}
	if acct.Balance != 40 {
		t.Errorf("plugin mutated the caller's account: balance %d", acct.Balance)
	}
}

func TestEmitTimesOutSlowPlugin(t *testing.T) {
	r := plugin.NewRegistry().WithTimeout(20 * time.Millisecond)
	slow := &slowBooker{release: make(chan struct{})}
	defer close(slow.release)
	_ = r.Register(slow)

	start := time.Now()
	r.EmitReservationCreated(context.Background(), &reservation.Reservation{Code: "BKAAAAAA"})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("emit blocked for %v", elapsed)
	}
}

func TestEmitRecoversPanics(t *testing.T) {
	r := plugin.NewRegistry()
	_ = r.Register(panicky{})
	r.EmitPointsReset(context.Background(), &account.Account{ID: 1})
}
