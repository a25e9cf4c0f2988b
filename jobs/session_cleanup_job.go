package jobs

import (
	"fmt"
	"time"
	"tripcost-api/services"
)

// SessionCleanupJob handles periodic eviction of idle sessions
type SessionCleanupJob struct {
	sessions *services.SessionService
	ticker   *time.Ticker
	done     chan bool
}

// NewSessionCleanupJob creates a new session cleanup job
func NewSessionCleanupJob(sessions *services.SessionService, interval time.Duration) *SessionCleanupJob {
	return &SessionCleanupJob{
		sessions: sessions,
		ticker:   time.NewTicker(interval),
		done:     make(chan bool),
	}
}

// Start begins the cleanup job
func (j *SessionCleanupJob) Start() {
	fmt.Println("Session cleanup job started")

	go func() {
		for {
			select {
			case <-j.ticker.C:
				j.cleanup()
			case <-j.done:
				fmt.Println("Session cleanup job stopped")
				return
			}
		}
	}()
}

// Stop stops the cleanup job
func (j *SessionCleanupJob) Stop() {
	j.ticker.Stop()
	j.done <- true
}

func (j *SessionCleanupJob) cleanup() {
	removed := j.sessions.CleanupExpired()
	if removed > 0 {
		fmt.Printf("Session cleanup removed %d idle sessions (%d remaining)\n", removed, j.sessions.Count())
	}
}
