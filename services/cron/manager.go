package cron

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/trawers/trawers-api/model"
)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron *cron.Cron
	db   *gorm.DB
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB) *CronManager {
	c := cron.New(cron.WithSeconds())

	return &CronManager{
		cron: c,
		db:   db,
	}
}

// Start registers and starts all cron jobs
func (m *CronManager) Start() error {
	log.Println("Starting cron jobs...")

	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()

	log.Println("Cron jobs started successfully")
	return nil
}

// Stop stops all cron jobs and waits for running ones to finish
func (m *CronManager) Stop() {
	log.Println("Stopping cron jobs...")
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	// Nightly at 3 AM: cancel orders stuck in PENDING for over a day
	_, err := m.cron.AddFunc("0 0 3 * * *", func() {
		m.runJob("cancel_stale_pending_orders", m.CancelStalePendingOrders)
	})
	if err != nil {
		return err
	}

	// Weekly on Sunday at 4 AM: prune old cron job logs
	_, err = m.cron.AddFunc("0 0 4 * * 0", func() {
		m.runJob("prune_cron_job_logs", m.PruneCronJobLogs)
	})
	if err != nil {
		return err
	}

	log.Println("All cron jobs registered successfully")
	return nil
}

// runJob wraps a job with database-backed execution logging
func (m *CronManager) runJob(jobName string, job func() (string, error)) {
	started := time.Now()
	log.Printf("[CRON] Starting job: %s at %s", jobName, started.Format(time.RFC3339))

	cronLog := model.CronJobLog{
		JobName:   jobName,
		Status:    "running",
		StartedAt: started,
	}
	m.db.Create(&cronLog)

	message, err := job()
	completed := time.Now()
	updates := map[string]interface{}{
		"completed_at": completed,
		"duration":     int(completed.Sub(started).Milliseconds()),
	}

	if err != nil {
		log.Printf("[CRON] Error in job: %s - %v", jobName, err)
		updates["status"] = "failed"
		updates["error_msg"] = err.Error()
	} else {
		log.Printf("[CRON] Completed job: %s - %s", jobName, message)
		updates["status"] = "completed"
		updates["message"] = message
	}

	m.db.Model(&model.CronJobLog{}).Where("id = ?", cronLog.ID).Updates(updates)
}
