package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"schoolfit_backend/internals/features/school/files/model"
)

// StartStaleJobReaper schedules a sweep that fails upload jobs stuck
// in pending or processing longer than the retention window. A job
// only stays there when the process died mid-run; its worker never
// comes back for it.
func StartStaleJobReaper(db *gorm.DB) *cron.Cron {
	schedule := envOrDefault("STALE_JOB_CRON", "*/30 * * * *")
	retention := time.Duration(envIntOrDefault("STALE_JOB_MAX_AGE_MINUTES", 120)) * time.Minute

	c := cron.New()
	tracker := jobTracker{db: db}
	_, err := c.AddFunc(schedule, func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-retention)

		var staleIDs []uuid.UUID
		err := db.Model(&model.FileProcessModel{}).
			Where("file_process_status IN ?", []string{model.FileProcessStatusPending, model.FileProcessStatusProcessing}).
			Where("file_process_updated_at < ?", cutoff).
			Pluck("file_process_id", &staleIDs).Error
		if err != nil {
			log.Printf("[REAPER] sweep failed: %v", err)
			return
		}
		for _, id := range staleIDs {
			tracker.markFailed(ctx, id)
			tracker.addMessage(ctx, id, model.FileProcessMessageSeverityError,
				fmt.Sprintf("job abandoned: no progress for over %s", retention))
		}
		if len(staleIDs) > 0 {
			log.Printf("[REAPER] failed %d stale upload job(s) older than %s", len(staleIDs), retention)
		}
	})
	if err != nil {
		log.Printf("[REAPER] bad schedule %q: %v", schedule, err)
		return c
	}
	c.Start()
	log.Printf("[REAPER] stale-job sweep scheduled (%s, max age %s)", schedule, retention)
	return c
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
