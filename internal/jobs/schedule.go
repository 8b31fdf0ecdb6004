package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule registers fn with the cron runner at a fixed interval. Jobs are
// registered explicitly from main; nothing here starts the runner.
func Schedule(c *cron.Cron, interval time.Duration, fn func()) error {
	if interval <= 0 {
		return fmt.Errorf("invalid job interval %s", interval)
	}
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), fn); err != nil {
		return fmt.Errorf("schedule job: %w", err)
	}
	return nil
}
