// Package maintenance runs the periodic storage-hygiene sweeps. Expiry
// enforcement does not depend on them: expired tokens and locks are retired
// on read, the sweeps only reclaim rows nobody will read again.
package maintenance

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mindmirror/backend/internal/config"
	"github.com/mindmirror/backend/internal/session"
	"github.com/mindmirror/backend/internal/token"
)

type Cleaner struct {
	config   *config.MaintenanceConfig
	log      *zap.Logger
	tokens   *token.Service
	sessions session.Registry
	cron     *cron.Cron
}

func NewCleaner(config *config.MaintenanceConfig, log *zap.Logger, tokens *token.Service, sessions session.Registry) *Cleaner {
	return &Cleaner{
		config:   config,
		log:      log,
		tokens:   tokens,
		sessions: sessions,
		cron:     cron.New(),
	}
}

// Start runs one sweep immediately, then on the configured schedule.
func (c *Cleaner) Start() error {
	if _, err := c.cron.AddFunc(c.config.CleanupSchedule, c.Sweep); err != nil {
		return err
	}
	c.cron.Start()
	go c.Sweep()
	return nil
}

func (c *Cleaner) Stop() {
	ctx := c.cron.Stop()
	<-ctx.Done()
}

func (c *Cleaner) Sweep() {
	retention := c.config.RetentionWindow

	tokensDeleted, err := c.tokens.CleanupExpired(retention)
	if err != nil {
		c.log.Error("token cleanup failed", zap.Error(err))
	}

	sessionsDeleted, err := c.sessions.CleanupIdle(retention)
	if err != nil {
		c.log.Error("session cleanup failed", zap.Error(err))
	}

	c.log.Info("maintenance sweep finished",
		zap.Int64("tokens_deleted", tokensDeleted),
		zap.Int64("sessions_deleted", sessionsDeleted))
}
