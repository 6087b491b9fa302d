package cron

import log "log/slog"

// InitCron 注册任务并启动引擎。没有任何任务时引擎照常启动，Stop 仍可调用
func InitCron(mgr *Manager) error {
	n, err := mgr.RegisterJobs()
	if err != nil {
		return err
	}
	mgr.Start()
	if n == 0 {
		log.Warn("Cron Jobs started with no job configured")
		return nil
	}
	for name, next := range mgr.NextRuns() {
		log.Info("Cron job scheduled", "job", name, "next_run", next)
	}
	return nil
}
