package runner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/stress-lb/adapters"
	"github.com/momentics/stress-lb/api"
	"github.com/momentics/stress-lb/fake"
	"github.com/momentics/stress-lb/internal/carrier"
	"github.com/momentics/stress-lb/runner"
)

const fakeTID api.ThreadID = 777

type harness struct {
	aff    *fake.Affinity
	waiter *fake.TickWaiter
	timers *fake.Timers
}

func newHarness(interval time.Duration) *harness {
	return &harness{
		aff:    &fake.Affinity{},
		waiter: &fake.TickWaiter{Interval: interval},
		timers: &fake.Timers{},
	}
}

func (h *harness) options(cores int, extra ...runner.Option) []runner.Option {
	opts := []runner.Option{
		runner.WithAffinity(h.aff),
		runner.WithCoreCount(cores),
		runner.WithCarrierOptions(
			carrier.WithTimerFactory(h.timers.Factory),
			carrier.WithWaiterOpener(func(unix.Signal) (carrier.Waiter, error) { return h.waiter, nil }),
			carrier.WithThreadID(func() api.ThreadID { return fakeTID }),
		),
	}
	return append(opts, extra...)
}

func (h *harness) timerDeletes() []int32 {
	var out []int32
	for _, t := range h.timers.Created() {
		out = append(out, t.Deletes())
	}
	return out
}

func testConfig() *runner.Config {
	cfg := runner.DefaultConfig()
	cfg.Interval = time.Millisecond
	cfg.Duration = 30 * time.Millisecond
	cfg.Priority = 0
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := runner.DefaultConfig()
	if cfg.ThreadsPerCore != 3 || cfg.Interval != time.Millisecond || cfg.Priority != 1 ||
		cfg.ReservedCPU != 0 || cfg.Duration != 0 || cfg.Signal != unix.SIGALRM {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}

func TestRunFourCores(t *testing.T) {
	h := newHarness(time.Millisecond)
	cfg := testConfig()
	r, err := runner.New(cfg, h.options(4)...)
	if err != nil {
		t.Fatal(err)
	}
	if r.Workers() != 9 {
		t.Fatalf("Workers = %d, want 9", r.Workers())
	}

	start := time.Now()
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if elapsed := time.Since(start); elapsed > cfg.Duration+time.Second {
		t.Errorf("shutdown took %v", elapsed)
	}
	if sum.Workers != 9 || len(sum.Increments) != 9 {
		t.Fatalf("summary workers=%d increments=%d", sum.Workers, len(sum.Increments))
	}
	for i, n := range sum.Increments {
		if n < 1 {
			t.Errorf("worker %d never incremented", i)
		}
	}
	if sum.CarrierTID != fakeTID {
		t.Errorf("carrier tid = %d", sum.CarrierTID)
	}
	if sum.Notifications == 0 {
		t.Error("carrier consumed no notifications")
	}
	if got := h.aff.Count(1, 2, 3); got != 9 {
		t.Errorf("workers bound to [1 2 3] %d times, want 9", got)
	}
	if got := h.aff.Count(0); got != 1 {
		t.Errorf("carrier bound to [0] %d times, want 1", got)
	}
	if d := h.timerDeletes(); len(d) != 1 || d[0] != 1 {
		t.Errorf("timer deletes %v, want [1]", d)
	}
	if h.waiter.Closed() != 1 {
		t.Errorf("waiter closed %d times", h.waiter.Closed())
	}
}

func TestRunZeroThreadsPerCore(t *testing.T) {
	h := newHarness(time.Millisecond)
	cfg := testConfig()
	cfg.ThreadsPerCore = 0
	r, err := runner.New(cfg, h.options(4)...)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Workers != 0 || len(sum.Increments) != 0 {
		t.Errorf("expected no workers, got %+v", sum)
	}
	if sum.Notifications == 0 {
		t.Error("carrier did not run alone")
	}
}

func TestRunSingleCore(t *testing.T) {
	h := newHarness(time.Millisecond)
	r, err := runner.New(testConfig(), h.options(1)...)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := r.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sum.Workers != 0 {
		t.Errorf("workers = %d on a single core", sum.Workers)
	}
}

func TestRunShutdown(t *testing.T) {
	h := newHarness(time.Millisecond)
	cfg := testConfig()
	cfg.Duration = 0
	r, err := runner.New(cfg, h.options(2)...)
	if err != nil {
		t.Fatal(err)
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = r.Shutdown()
		_ = r.Shutdown()
	}()
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunContextCancel(t *testing.T) {
	h := newHarness(time.Millisecond)
	cfg := testConfig()
	cfg.Duration = 0
	r, err := runner.New(cfg, h.options(2)...)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	sum, err := r.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sum.Increments) != 3 {
		t.Errorf("joined %d workers, want 3", len(sum.Increments))
	}
}

func TestRunCarrierFailureJoinsWorkers(t *testing.T) {
	h := newHarness(time.Millisecond)
	h.aff.Fail = func(cpus []int) bool { return len(cpus) == 1 && cpus[0] == 0 }
	r, err := runner.New(testConfig(), h.options(2)...)
	if err != nil {
		t.Fatal(err)
	}
	sum, err := r.Run(context.Background())
	if api.CodeOf(err) != api.ErrCodeAffinity {
		t.Fatalf("expected affinity error, got %v", err)
	}
	if len(sum.Increments) != 3 {
		t.Errorf("joined %d workers, want 3", len(sum.Increments))
	}
	if len(h.timerDeletes()) != 0 {
		t.Error("timer created although the carrier failed")
	}
	if sum.Err == "" {
		t.Error("summary does not record the error")
	}
}

func TestRunWorkerFailureStopsCarrier(t *testing.T) {
	h := newHarness(time.Millisecond)
	h.aff.Fail = func(cpus []int) bool { return len(cpus) > 1 }
	cfg := testConfig()
	cfg.Duration = 0
	r, err := runner.New(cfg, h.options(3)...)
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Run(context.Background())
	if api.CodeOf(err) != api.ErrCodeAffinity {
		t.Fatalf("expected affinity error, got %v", err)
	}
	if d := h.timerDeletes(); len(d) != 1 || d[0] != 1 {
		t.Errorf("timer deletes %v, want [1]", d)
	}
}

func TestRunTwice(t *testing.T) {
	h := newHarness(time.Millisecond)
	r, err := runner.New(testConfig(), h.options(2)...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background()); !errors.Is(err, api.ErrAlreadyExists) {
		t.Fatalf("second Run: %v", err)
	}
}

func TestRunPublishesControl(t *testing.T) {
	h := newHarness(time.Millisecond)
	ctrl := adapters.NewControlAdapter()
	r, err := runner.New(testConfig(), h.options(2, runner.WithControl(ctrl))...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if ctrl.GetConfig()["workers"] != 3 {
		t.Errorf("config %v", ctrl.GetConfig())
	}
	stats := ctrl.Stats()
	if stats["error_code"] != "ok" || stats["workers.joined"] != 3 {
		t.Errorf("stats %v", stats)
	}
	if stats["debug.carrier.state"] != api.CarrierStopped.String() {
		t.Errorf("carrier state probe %v", stats["debug.carrier.state"])
	}
}

func TestNewValidation(t *testing.T) {
	cases := []struct {
		name  string
		cores int
		mut   func(*runner.Config)
	}{
		{"negative threads", 4, func(c *runner.Config) { c.ThreadsPerCore = -1 }},
		{"zero interval", 4, func(c *runner.Config) { c.Interval = 0 }},
		{"negative duration", 4, func(c *runner.Config) { c.Duration = -time.Second }},
		{"priority too high", 4, func(c *runner.Config) { c.Priority = 100 }},
		{"reserved outside host", 4, func(c *runner.Config) { c.ReservedCPU = 4 }},
		{"negative cores", -1, func(*runner.Config) {}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := runner.DefaultConfig()
			tc.mut(cfg)
			_, err := runner.New(cfg, runner.WithAffinity(&api.MockAffinity{}), runner.WithCoreCount(tc.cores))
			if !errors.Is(err, api.ErrInvalidArgument) {
				t.Errorf("expected invalid argument, got %v", err)
			}
		})
	}
}

func TestRunElevatesCarrierOnly(t *testing.T) {
	h := newHarness(time.Millisecond)
	cfg := testConfig()
	cfg.Priority = 5
	r, err := runner.New(cfg, h.options(2)...)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p := h.aff.Priorities(); len(p) != 1 || p[0] != 5 {
		t.Errorf("priority requests %v, want [5]", p)
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	h := newHarness(time.Millisecond)
	r, err := runner.New(testConfig(), h.options(2)...)
	if err != nil {
		t.Fatal(err)
	}
	_ = r.Shutdown()
	if _, err := r.Run(context.Background()); !errors.Is(err, api.ErrShutdown) {
		t.Fatalf("expected ErrShutdown, got %v", err)
	}
	if len(h.timers.Created()) != 0 {
		t.Error("timer created after shutdown")
	}
}
