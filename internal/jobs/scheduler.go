package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// Job is a unit of recurring background work. NextRun is consulted
// after every run to schedule the next one.
type Job interface {
	Run(ctx context.Context) error
	NextRun() time.Time
}

type scheduledJob struct {
	name  string
	job   Job
	timer *time.Timer
}

// JobScheduler runs registered jobs on their own cadence, each via a
// one-shot timer that is re-armed after the run completes.
type JobScheduler struct {
	mu      sync.Mutex
	jobs    []*scheduledJob
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

func NewJobScheduler() *JobScheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &JobScheduler{ctx: ctx, cancel: cancel}
}

// Register adds a job. Jobs registered after Start are picked up
// immediately.
func (s *JobScheduler) Register(name string, job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := &scheduledJob{name: name, job: job}
	s.jobs = append(s.jobs, entry)
	log.Printf("✅ [JOBS] Registered %s", name)

	if s.running {
		s.armLocked(entry)
	}
}

// Start arms every registered job.
func (s *JobScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true

	log.Printf("🚀 [JOBS] Scheduler started with %d jobs", len(s.jobs))
	for _, entry := range s.jobs {
		s.armLocked(entry)
	}
}

// armLocked sets the job's timer for its next run. Caller holds s.mu.
func (s *JobScheduler) armLocked(entry *scheduledJob) {
	wait := time.Until(entry.job.NextRun())
	if wait < 0 {
		wait = 0
	}
	entry.timer = time.AfterFunc(wait, func() {
		s.run(entry)
	})
}

func (s *JobScheduler) run(entry *scheduledJob) {
	s.wg.Add(1)
	defer s.wg.Done()

	start := time.Now()
	if err := entry.job.Run(s.ctx); err != nil {
		log.Printf("❌ [JOBS] %s failed: %v", entry.name, err)
	} else {
		log.Printf("✅ [JOBS] %s finished in %v", entry.name, time.Since(start))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		s.armLocked(entry)
	}
}

// Stop cancels pending timers and waits for in-flight runs.
func (s *JobScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	for _, entry := range s.jobs {
		if entry.timer != nil {
			entry.timer.Stop()
		}
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	log.Println("🛑 [JOBS] Scheduler stopped")
}
