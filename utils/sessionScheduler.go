package utils

import (
	"fmt"
	"time"

	"techlearn/logger"
	"techlearn/session"

	"github.com/robfig/cron/v3"
)

// InitializeSessionScheduler starts a cron job that drops device sessions idle for
// longer than idle. The returned scheduler must be stopped on shutdown.
func InitializeSessionScheduler(registry *session.Registry, spec string, idle time.Duration, log *logger.Logger) (*cron.Cron, error) {
	log.Info("[SESSION-SCHEDULER] Initializing session scheduler...", "spec", spec, "idle", idle.String())

	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		SweepIdleSessions(registry, idle, log)
	}); err != nil {
		return nil, fmt.Errorf("invalid session sweep schedule %q: %w", spec, err)
	}

	c.Start()
	log.Info("[SESSION-SCHEDULER] Session scheduler started")
	return c, nil
}

// SweepIdleSessions runs one sweep and logs the outcome.
func SweepIdleSessions(registry *session.Registry, idle time.Duration, log *logger.Logger) int {
	dropped := registry.Sweep(idle)
	if dropped > 0 {
		log.Info("[SESSION-SCHEDULER] Dropped idle sessions", "count", dropped, "remaining", registry.Len())
	}
	return dropped
}
