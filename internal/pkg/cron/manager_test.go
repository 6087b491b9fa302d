package cron

import (
	"strings"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
)

func newTestManager() *Manager {
	return &Manager{engine: cron.New(cron.WithSeconds())}
}

func TestInitCronSkipsEmptySpec(t *testing.T) {
	m := newTestManager()
	m.Add("disabled", "  ", cron.FuncJob(func() {}))
	m.Add("yearly", "0 0 0 1 1 *", cron.FuncJob(func() {}))

	if err := InitCron(m); err != nil {
		t.Fatalf("init: %v", err)
	}
	defer m.Stop()

	next := m.NextRuns()
	if _, ok := next["disabled"]; ok || len(next) != 1 {
		t.Fatalf("next runs = %v", next)
	}
	if at := next["yearly"]; !at.After(time.Now()) || at.Month() != time.January || at.Day() != 1 {
		t.Fatalf("yearly next run = %v", at)
	}
}

func TestInitCronRejectsBadSpec(t *testing.T) {
	m := newTestManager()
	m.Add("rating_audit", "every ten minutes", cron.FuncJob(func() {}))

	err := InitCron(m)
	if err == nil || !strings.Contains(err.Error(), "rating_audit") {
		t.Fatalf("err = %v", err)
	}
}

func TestInitCronWithoutJobs(t *testing.T) {
	m := newTestManager()
	m.Add("rating_audit", "", cron.FuncJob(func() {}))
	if err := InitCron(m); err != nil {
		t.Fatalf("init: %v", err)
	}
	m.Stop()
}
