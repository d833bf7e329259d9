package jobs

import (
	"context"
	"sync"
	"testing"
	"time"
)

type tickJob struct {
	mu       sync.Mutex
	runs     int
	interval time.Duration
}

func (j *tickJob) Run(context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs++
	return nil
}

func (j *tickJob) NextRun() time.Time {
	return time.Now().Add(j.interval)
}

func (j *tickJob) count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.runs
}

func TestSchedulerRunsAndReschedules(t *testing.T) {
	job := &tickJob{interval: 20 * time.Millisecond}
	scheduler := NewJobScheduler()
	scheduler.Register("tick", job)
	scheduler.Start()

	time.Sleep(300 * time.Millisecond)
	scheduler.Stop()

	if got := job.count(); got < 2 {
		t.Errorf("job ran %d times, want at least 2 (timer must re-arm)", got)
	}

	after := job.count()
	time.Sleep(100 * time.Millisecond)
	if got := job.count(); got != after {
		t.Errorf("job ran after Stop: %d -> %d", after, got)
	}
}

func TestSchedulerRegisterAfterStart(t *testing.T) {
	scheduler := NewJobScheduler()
	scheduler.Start()
	defer scheduler.Stop()

	job := &tickJob{interval: 20 * time.Millisecond}
	scheduler.Register("late", job)

	time.Sleep(150 * time.Millisecond)
	if job.count() == 0 {
		t.Error("job registered after Start never ran")
	}
}
