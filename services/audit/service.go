// Package audit persists the governance audit trail asynchronously so the
// request path never waits on the database.
package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/governs-ai/agent-gateway/models"
	"github.com/governs-ai/agent-gateway/repositories"
	"go.uber.org/zap"
)

// Service buffers audit records and writes them with a pool of workers.
// Records are dropped, with a warning, rather than blocking callers when the
// buffer is full; the trail is best-effort while the decision path is not.
type Service struct {
	repo        repositories.AuditRepository
	logger      *zap.Logger
	recordChan  chan *models.AuditRecord
	workerCount int
	bufferSize  int
	wg          sync.WaitGroup
	started     bool
	mu          sync.Mutex
}

// Config holds configuration for the audit Service
type Config struct {
	BufferSize  int
	WorkerCount int
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		BufferSize:  10000,
		WorkerCount: 5,
	}
}

// NewService creates a new audit Service
func NewService(repo repositories.AuditRepository, logger *zap.Logger, cfg Config) *Service {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultConfig().WorkerCount
	}

	return &Service{
		repo:        repo,
		logger:      logger,
		recordChan:  make(chan *models.AuditRecord, cfg.BufferSize),
		workerCount: cfg.WorkerCount,
		bufferSize:  cfg.BufferSize,
	}
}

// Start starts the background workers
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("audit service already started")
	}

	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.started = true
	s.logger.Info("started audit service",
		zap.Int("worker_count", s.workerCount),
		zap.Int("buffer_size", s.bufferSize))

	return nil
}

// Stop drains the buffer and stops the workers. Pending records are written
// unless the timeout elapses first.
func (s *Service) Stop(timeout time.Duration) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return fmt.Errorf("audit service not started")
	}
	s.started = false
	s.mu.Unlock()

	s.logger.Info("stopping audit service", zap.Int("pending_records", len(s.recordChan)))

	close(s.recordChan)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("audit service stopped")
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("audit service stop timeout after %v", timeout)
	}
}

// Record enqueues a record without blocking. It implements the gate's
// Recorder contract.
func (s *Service) Record(rec *models.AuditRecord) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		s.logger.Warn("audit record dropped, service not started",
			zap.String("corr_id", rec.CorrelationID))
		return
	}
	s.mu.Unlock()

	select {
	case s.recordChan <- rec:
	default:
		s.logger.Warn("audit buffer full, dropping record",
			zap.String("corr_id", rec.CorrelationID),
			zap.String("action", rec.Action))
	}
}

// Pending returns the number of buffered, unwritten records
func (s *Service) Pending() int {
	return len(s.recordChan)
}

// worker writes records from the channel until it is closed
func (s *Service) worker(id int) {
	defer s.wg.Done()

	for rec := range s.recordChan {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Insert(ctx, rec); err != nil {
			s.logger.Error("failed to write audit record",
				zap.Int("worker_id", id),
				zap.String("corr_id", rec.CorrelationID),
				zap.Error(err))
		}
		cancel()
	}
}
