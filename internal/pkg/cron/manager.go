package cron

import (
	"Agora/internal/job"
	"fmt"
	log "log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type scheduledJob struct {
	name string
	spec string
	job  cron.Job
	id   cron.EntryID
}

// Manager 持有全部定时任务，spec 为空的任务不注册
type Manager struct {
	engine *cron.Cron
	jobs   []*scheduledJob
}

func NewCronManager(ratingAuditJob *job.RatingAuditJob, ratingAuditSpec string) *Manager {
	m := &Manager{
		engine: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
	m.Add("rating_audit", ratingAuditSpec, ratingAuditJob)
	return m
}

// Add 登记任务，RegisterJobs 时才解析 spec
func (s *Manager) Add(name, spec string, j cron.Job) {
	s.jobs = append(s.jobs, &scheduledJob{name: name, spec: strings.TrimSpace(spec), job: j})
}

// RegisterJobs 注册已配置的任务，返回注册数量
func (s *Manager) RegisterJobs() (int, error) {
	registered := 0
	for _, j := range s.jobs {
		if j.spec == "" {
			log.Info("Cron job disabled", "job", j.name)
			continue
		}
		id, err := s.engine.AddJob(j.spec, j.job)
		if err != nil {
			return registered, fmt.Errorf("register cron job %s (%q): %w", j.name, j.spec, err)
		}
		j.id = id
		registered++
	}
	return registered, nil
}

// NextRuns 已注册任务的下一次执行时间，引擎启动后才有值
func (s *Manager) NextRuns() map[string]time.Time {
	next := make(map[string]time.Time, len(s.jobs))
	for _, j := range s.jobs {
		if j.id != 0 {
			next[j.name] = s.engine.Entry(j.id).Next
		}
	}
	return next
}

func (s *Manager) Start() {
	log.Info("Cron 定时任务引擎启动")
	s.engine.Start()
}

// Stop 等待正在执行的任务结束
func (s *Manager) Stop() {
	log.Info("Cron 定时任务引擎停止")
	<-s.engine.Stop().Done()
}
