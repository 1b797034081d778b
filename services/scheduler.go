package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"copyhound/config"
	"copyhound/storage"
)

// SchedulerStatus beschreibt den Zustand des Schedulers für /stats.
type SchedulerStatus struct {
	Running      bool      `json:"running"`
	LastPass     time.Time `json:"last_pass"`
	LastBatch    int       `json:"last_batch"`
	TotalUpdated int       `json:"total_updated"`
	TotalFailed  int       `json:"total_failed"`
}

// RefreshScheduler frischt veraltete Datensätze im Hintergrund auf. Pro
// Durchlauf wird eine Charge der ältesten Datensätze nachrecherchiert,
// einer nach dem anderen mit fester Pause dazwischen.
type RefreshScheduler struct {
	cfg       *config.Config
	store     storage.RecordStore
	collector *Collector
	logger    *zap.Logger

	mu           sync.Mutex
	running      bool
	cancel       context.CancelFunc
	lastPass     time.Time
	lastBatch    int
	totalUpdated int
	totalFailed  int
}

// NewRefreshScheduler erstellt einen neuen Scheduler.
func NewRefreshScheduler(cfg *config.Config, store storage.RecordStore, collector *Collector, logger *zap.Logger) *RefreshScheduler {
	return &RefreshScheduler{
		cfg:       cfg,
		store:     store,
		collector: collector,
		logger:    logger,
	}
}

// RunPass führt einen Auffrischungs-Durchlauf aus. Läuft bereits ein
// Durchlauf, kehrt der Aufruf sofort zurück (Single-Flight). Fehler bei
// einzelnen Datensätzen werden protokolliert und übersprungen.
func (s *RefreshScheduler) RunPass(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Info("Refresh pass already running, skipping")
		return
	}
	passCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.mu.Unlock()

	defer func() {
		cancel()
		s.mu.Lock()
		s.running = false
		s.cancel = nil
		s.lastPass = time.Now()
		s.mu.Unlock()
	}()

	// Als veraltet gilt, was länger als sieben Intervalle nicht geprüft wurde.
	cutoff := time.Now().Add(-7 * s.cfg.RefreshInterval())
	stale, err := s.store.Stale(passCtx, cutoff, s.cfg.RefreshBatchSize)
	if err != nil {
		s.logger.Error("Loading stale records failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	s.lastBatch = len(stale)
	s.mu.Unlock()

	if len(stale) == 0 {
		s.logger.Info("No stale records, nothing to refresh")
		return
	}
	s.logger.Info("Starting refresh pass", zap.Int("batch", len(stale)))

	updated, failed := 0, 0
	for i, rec := range stale {
		if i > 0 {
			// Pause zwischen Datensätzen, abbrechbar über den Kontext.
			select {
			case <-passCtx.Done():
				s.logger.Info("Refresh pass cancelled",
					zap.Int("updated", updated), zap.Int("failed", failed))
				return
			case <-time.After(s.cfg.RefreshItemDelay()):
			}
		}

		if _, err := s.collector.VerifyAndUpdate(passCtx, rec.ID); err != nil {
			failed++
			s.logger.Warn("Refreshing record failed",
				zap.Uint("record_id", rec.ID),
				zap.String("title", rec.Title),
				zap.Error(err))
			continue
		}
		updated++
	}

	s.mu.Lock()
	s.totalUpdated += updated
	s.totalFailed += failed
	s.mu.Unlock()

	s.logger.Info("Refresh pass finished",
		zap.Int("updated", updated), zap.Int("failed", failed))
}

// TriggerAsync startet einen Durchlauf im Hintergrund.
func (s *RefreshScheduler) TriggerAsync(ctx context.Context) {
	go s.RunPass(ctx)
}

// Stop bricht einen laufenden Durchlauf zwischen zwei Datensätzen ab.
func (s *RefreshScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// Status liefert den Scheduler-Zustand für den Statistik-Endpunkt.
func (s *RefreshScheduler) Status() SchedulerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SchedulerStatus{
		Running:      s.running,
		LastPass:     s.lastPass,
		LastBatch:    s.lastBatch,
		TotalUpdated: s.totalUpdated,
		TotalFailed:  s.totalFailed,
	}
}
