package main

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"", 0, false},
		{"10", 10 * time.Second, false},
		{"1ms", time.Millisecond, false},
		{"250us", 250 * time.Microsecond, false},
		{"1m30s", 90 * time.Second, false},
		{"-1s", 0, true},
		{"ten", 0, true},
	}
	for _, c := range cases {
		got, err := parseDuration(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("parseDuration(%q) error = %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseDuration(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseSignal(t *testing.T) {
	cases := []struct {
		in      string
		want    unix.Signal
		wantErr bool
	}{
		{"SIGALRM", unix.SIGALRM, false},
		{"alrm", unix.SIGALRM, false},
		{"SIGUSR1", unix.SIGUSR1, false},
		{"14", unix.SIGALRM, false},
		{"SIGRTMIN", 34, false},
		{"SIGRTMIN+2", 36, false},
		{"SIGRTMAX-1", 63, false},
		{"SIGRTMAX+1", 0, true},
		{"SIGKILL", 0, true},
		{"SIGINT", 0, true},
		{"32", 0, true},
		{"SIGNOPE", 0, true},
	}
	for _, c := range cases {
		got, err := parseSignal(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("parseSignal(%q) error = %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("parseSignal(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRootFlags(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags([]string{"-t", "2", "-d", "5", "-i", "2ms", "-p", "0", "--signal", "SIGRTMIN+1"}); err != nil {
		t.Fatal(err)
	}
	o := &options{}
	o.threadsPerCore, _ = cmd.Flags().GetInt("threads-per-core")
	o.duration, _ = cmd.Flags().GetString("duration")
	o.interval, _ = cmd.Flags().GetString("interval")
	o.priority, _ = cmd.Flags().GetInt("priority")
	o.signal, _ = cmd.Flags().GetString("signal")
	cfg, err := o.config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ThreadsPerCore != 2 || cfg.Duration != 5*time.Second || cfg.Interval != 2*time.Millisecond ||
		cfg.Priority != 0 || cfg.Signal != 35 {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestRootDefaults(t *testing.T) {
	cmd := newRootCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatal(err)
	}
	interval, _ := cmd.Flags().GetString("interval")
	sig, _ := cmd.Flags().GetString("signal")
	o := &options{interval: interval, signal: sig, threadsPerCore: 3, priority: 1}
	cfg, err := o.config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Interval != time.Millisecond || cfg.Signal != unix.SIGALRM || cfg.Duration != 0 {
		t.Errorf("unexpected defaults %+v", cfg)
	}
}
