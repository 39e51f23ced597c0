package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CrisisMonitor/internal/domain"
)

type manualDriver struct {
	job     func(time.Time)
	stopped bool
}

func (m *manualDriver) Start(_ context.Context, job func(time.Time)) error {
	m.job = job
	return nil
}

func (m *manualDriver) Stop(context.Context) error {
	m.stopped = true
	return nil
}

func TestSchedulerRunsPipelineAndHooks(t *testing.T) {
	t.Parallel()

	h := newHarness(globalNews)
	h.feed(globalNews, entriesFor("a", 2))

	driver := &manualDriver{}
	var seen []domain.RunStats
	s := NewScheduler(driver, h.pipeline(), nil).AfterRun(func(_ context.Context, stats domain.RunStats) {
		seen = append(seen, stats)
	})

	require.NoError(t, s.Start(context.Background()))
	require.NotNil(t, driver.job)

	driver.job(testNow)
	driver.job(testNow.Add(time.Hour))

	require.Len(t, seen, 2)
	_, accepted, _ := seen[0].Totals()
	assert.Equal(t, 2, accepted)
	_, accepted, _ = seen[1].Totals()
	assert.Equal(t, 0, accepted)

	require.NoError(t, s.Stop(context.Background()))
	assert.True(t, driver.stopped)
}

func TestSchedulerRunNowSkipsHooksOnError(t *testing.T) {
	t.Parallel()

	called := false
	s := NewScheduler(nil, NewPipeline(PipelineDeps{}), nil).AfterRun(func(context.Context, domain.RunStats) {
		called = true
	})

	_, err := s.RunNow(context.Background(), testNow)
	assert.Error(t, err)
	assert.False(t, called)
	assert.NoError(t, s.Start(context.Background()), "no driver means nothing to start")
}
