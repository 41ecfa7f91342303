package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/governs-ai/agent-gateway/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type captureRepo struct {
	mu   sync.Mutex
	recs []*models.AuditRecord
	err  error
}

func (c *captureRepo) Insert(ctx context.Context, rec *models.AuditRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.recs = append(c.recs, rec)
	return nil
}

func (c *captureRepo) GetByCorrelationID(ctx context.Context, correlationID string) ([]*models.AuditRecord, error) {
	return nil, nil
}

func (c *captureRepo) GetByUser(ctx context.Context, userID string, limit, offset int) ([]*models.AuditRecord, error) {
	return nil, nil
}

func (c *captureRepo) GetByDateRange(ctx context.Context, start, end time.Time, limit, offset int) ([]*models.AuditRecord, error) {
	return nil, nil
}

func (c *captureRepo) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.recs)
}

func testRecord(corrID string) *models.AuditRecord {
	return models.NewAuditRecord(corrID, models.Subject{UserID: "user-1"},
		"weather_current", models.ActionKindTool).
		WithDecision(models.OutcomeAllow, []string{"Request approved"}).
		WithOutcome(true, 12)
}

func TestService_RecordsAreWritten(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 2})
	require.NoError(t, svc.Start())

	for i := 0; i < 5; i++ {
		svc.Record(testRecord("corr-1"))
	}

	require.NoError(t, svc.Stop(2*time.Second))
	assert.Equal(t, 5, repo.count())
}

func TestService_StartTwiceFails(t *testing.T) {
	svc := NewService(&captureRepo{}, zap.NewNop(), DefaultConfig())
	require.NoError(t, svc.Start())
	require.Error(t, svc.Start())
	require.NoError(t, svc.Stop(time.Second))
}

func TestService_StopWithoutStartFails(t *testing.T) {
	svc := NewService(&captureRepo{}, zap.NewNop(), DefaultConfig())
	require.Error(t, svc.Stop(time.Second))
}

func TestService_RecordBeforeStartDropsSilently(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo, zap.NewNop(), DefaultConfig())

	svc.Record(testRecord("corr-1"))

	assert.Equal(t, 0, repo.count())
}

func TestService_StopDrainsPending(t *testing.T) {
	repo := &captureRepo{}
	svc := NewService(repo, zap.NewNop(), Config{BufferSize: 100, WorkerCount: 1})
	require.NoError(t, svc.Start())

	for i := 0; i < 50; i++ {
		svc.Record(testRecord("corr-drain"))
	}

	require.NoError(t, svc.Stop(5*time.Second))
	assert.Equal(t, 50, repo.count())
}

func TestService_InsertFailureDoesNotStopWorkers(t *testing.T) {
	repo := &captureRepo{err: assert.AnError}
	svc := NewService(repo, zap.NewNop(), Config{BufferSize: 10, WorkerCount: 1})
	require.NoError(t, svc.Start())

	svc.Record(testRecord("corr-1"))
	svc.Record(testRecord("corr-2"))

	require.NoError(t, svc.Stop(2*time.Second))
	assert.Equal(t, 0, repo.count())
}
