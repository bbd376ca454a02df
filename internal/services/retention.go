package services

import (
	"context"
	"time"

	"github.com/formstamp/formstamp/internal/logger"
	"github.com/formstamp/formstamp/internal/repository"
)

// RetentionService periodically purges render-log rows older than the
// configured age.
type RetentionService struct {
	logs   repository.RenderLogRepository
	maxAge time.Duration
	logger *logger.Logger
	ticker *time.Ticker
	done   chan bool
}

func NewRetentionService(logs repository.RenderLogRepository, maxAge time.Duration, logger *logger.Logger) *RetentionService {
	return &RetentionService{
		logs:   logs,
		maxAge: maxAge,
		logger: logger,
		done:   make(chan bool),
	}
}

func (s *RetentionService) Start() {
	s.ticker = time.NewTicker(1 * time.Hour)
	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				s.purge()
			}
		}
	}()
	s.logger.Infow("retention service started", "max_age", s.maxAge)
}

func (s *RetentionService) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	s.done <- true
	s.logger.Infow("retention service stopped")
}

func (s *RetentionService) purge() {
	cutoff := time.Now().Add(-s.maxAge)
	removed, err := s.logs.DeleteOlderThan(context.Background(), cutoff)
	if err != nil {
		s.logger.Errorw("render log purge failed", "error", err)
		return
	}
	if removed > 0 {
		s.logger.Infow("purged old render logs", "removed", removed, "cutoff", cutoff)
	}
}
