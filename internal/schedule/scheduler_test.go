package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

type blockingJob struct {
	runs    atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (j *blockingJob) Name() string { return "blocking" }

func (j *blockingJob) Run(ctx context.Context) error {
	j.runs.Add(1)
	j.started <- struct{}{}
	<-j.release
	return nil
}

func TestWrapSkipsWhileRunning(t *testing.T) {
	s := NewCronScheduler()
	job := &blockingJob{started: make(chan struct{}, 1), release: make(chan struct{})}
	run := s.wrap(job, "@every 1m")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		run()
	}()
	<-job.started
	run()
	close(job.release)
	wg.Wait()
	require.Equal(t, int32(1), job.runs.Load())
}

func TestAddJob(t *testing.T) {
	s := NewCronScheduler()
	job := &blockingJob{}
	require.Error(t, s.AddJob(job, "not a spec"))
	require.NoError(t, s.AddJob(job, "@every 10m"))
	require.Error(t, s.AddJob(job, "*/5 * * * *"))
}
