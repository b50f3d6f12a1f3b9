package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/flagtree/internal/flags/hierarchy"
)

// Auditor is the part of FlagService the AuditService needs.
type Auditor interface {
	Audit(ctx context.Context) ([]hierarchy.Anomaly, error)
}

// AuditService periodically scans the flag hierarchy and logs every
// anomaly it finds, so corrupt data surfaces before a gate silently closes.
type AuditService struct {
	Flags    Auditor
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewAuditService creates an audit worker. If interval is 0 or negative,
// defaults to 10 minutes.
func NewAuditService(flags Auditor, logger *slog.Logger, interval time.Duration) *AuditService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &AuditService{
		Flags:    flags,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *AuditService) Start() {
	go s.run()
	s.Logger.Info("hierarchy audit started", "interval", s.Interval)
}

// Stop blocks until any in-progress scan has finished.
func (s *AuditService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("hierarchy audit stopped")
}

func (s *AuditService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.RunOnce(context.Background())

	for {
		select {
		case <-ticker.C:
			s.RunOnce(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// RunOnce performs a single scan and returns the number of anomalies found.
func (s *AuditService) RunOnce(ctx context.Context) int {
	anomalies, err := s.Flags.Audit(ctx)
	if err != nil {
		s.Logger.Error("hierarchy audit failed", "error", err)
		return 0
	}

	for _, a := range anomalies {
		s.Logger.Warn("malformed flag hierarchy",
			"anomaly", string(a.Kind),
			"flag", a.Flag,
			"reason", a.Detail,
		)
	}
	if len(anomalies) == 0 {
		s.Logger.Debug("hierarchy audit clean")
	} else {
		s.Logger.Warn("hierarchy audit found anomalies", "count", len(anomalies))
	}
	return len(anomalies)
}
