package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/jonesrussell/trendwatch/internal/logging"
)

const defaultRefreshInterval = time.Hour

// Poller runs the refresher on a fixed interval. A failed refresh is
// logged and the previous snapshot keeps serving until the next tick.
type Poller struct {
	refresher *Refresher
	logger    logging.Logger

	interval time.Duration
	running  bool
	stopChan chan struct{}
}

// NewPoller creates a poller.
func NewPoller(refresher *Refresher, interval time.Duration, logger logging.Logger) *Poller {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &Poller{
		refresher: refresher,
		logger:    logger,
		interval:  interval,
		stopChan:  make(chan struct{}),
	}
}

// Start starts the poll loop in a goroutine.
func (p *Poller) Start(ctx context.Context) error {
	if p.running {
		return errors.New("poller is already running")
	}
	p.running = true
	p.logger.Info("refresh poller starting", "interval", p.interval)

	go p.run(ctx)
	return nil
}

// Stop stops the poll loop.
func (p *Poller) Stop() {
	if !p.running {
		return
	}
	p.logger.Info("refresh poller stopping")
	close(p.stopChan)
	p.running = false
}

func (p *Poller) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("refresh poller context cancelled")
			return
		case <-p.stopChan:
			return
		case <-ticker.C:
			if err := p.refresher.Refresh(ctx); err != nil {
				p.logger.Error("scheduled refresh failed", "error", err)
			}
		}
	}
}
