package cron

import (
	"testing"
)

func TestRegistry_Register_Jobs(t *testing.T) {
	ran := false
	Register("sweepprobe", "@every 30s", func(args ...string) {
		ran = true
	})
	defer Unregister("sweepprobe")

	jobs := Jobs()
	j, ok := jobs["sweepprobe"]
	if !ok {
		t.Fatal("sweepprobe not in Jobs()")
	}
	if j.Schedule != "@every 30s" {
		t.Errorf("Schedule = %q, want @every 30s", j.Schedule)
	}
	j.Run()
	if !ran {
		t.Error("Run did not execute")
	}

	// Jobs() returns a copy; mutating it must not leak back.
	delete(jobs, "sweepprobe")
	if _, ok := Jobs()["sweepprobe"]; !ok {
		t.Error("deleting from the Jobs() copy removed the registered job")
	}
}

func TestRegistry_Register_DuplicatePanics(t *testing.T) {
	Register("dupjob", "@hourly", func(...string) {})
	defer Unregister("dupjob")
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate")
		}
	}()
	Register("dupjob", "@daily", func(...string) {})
}
