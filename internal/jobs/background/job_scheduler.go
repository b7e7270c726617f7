package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"elafcatalog/internal/logging"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const (
	RefreshJobName  = "category-tree-refresh"
	SnapshotJobName = "category-tree-snapshot"
)

// TreeJobs is the work the scheduler runs for every stored tenant.
type TreeJobs interface {
	RefreshAll(ctx context.Context) (int, error)
	PublishAll(ctx context.Context) (int, error)
}

// Config controls which jobs run and how often. A zero SnapshotInterval
// disables snapshot publishing.
type Config struct {
	RefreshInterval  time.Duration
	SnapshotInterval time.Duration
	JobTimeout       time.Duration
}

// JobScheduler runs periodic category tree maintenance.
type JobScheduler struct {
	scheduler gocron.Scheduler
	trees     TreeJobs
	cfg       Config
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
}

// NewJobScheduler creates the scheduler and registers its jobs. Jobs do not
// run until Start.
func NewJobScheduler(trees TreeJobs, cfg Config, logger *zap.Logger) (*JobScheduler, error) {
	if cfg.RefreshInterval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %s", cfg.RefreshInterval)
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}

	logger = logger.Named("scheduler")
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(gocronLogger{logger.Sugar()}),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	js := &JobScheduler{
		scheduler: scheduler,
		trees:     trees,
		cfg:       cfg,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		jobs:      make(map[string]gocron.Job),
	}

	if err := js.register(RefreshJobName, cfg.RefreshInterval, js.refreshTrees); err != nil {
		cancel()
		return nil, err
	}
	if cfg.SnapshotInterval > 0 {
		if err := js.register(SnapshotJobName, cfg.SnapshotInterval, js.publishSnapshots); err != nil {
			cancel()
			return nil, err
		}
	}

	logger.Info("registered background jobs", zap.Strings("jobs", js.JobNames()))
	return js, nil
}

func (js *JobScheduler) register(name string, every time.Duration, task func()) error {
	job, err := js.scheduler.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create %s job: %w", name, err)
	}

	js.mu.Lock()
	js.jobs[name] = job
	js.mu.Unlock()
	return nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.logger.Info("starting background job scheduler")
	js.scheduler.Start()
}

// Stop cancels running jobs and waits for them to return.
func (js *JobScheduler) Stop() error {
	js.logger.Info("stopping background job scheduler")
	js.cancel()
	return js.scheduler.Shutdown()
}

// JobNames returns registered job names in sorted order.
func (js *JobScheduler) JobNames() []string {
	js.mu.RLock()
	defer js.mu.RUnlock()

	names := make([]string, 0, len(js.jobs))
	for name := range js.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunNow triggers a registered job outside its schedule.
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return job.RunNow()
}

func (js *JobScheduler) refreshTrees() {
	js.run(RefreshJobName, js.trees.RefreshAll)
}

func (js *JobScheduler) publishSnapshots() {
	js.run(SnapshotJobName, js.trees.PublishAll)
}

func (js *JobScheduler) run(name string, fn func(context.Context) (int, error)) {
	ctx, cancel := context.WithTimeout(js.ctx, js.cfg.JobTimeout)
	defer cancel()

	start := time.Now()
	done, err := fn(ctx)
	if err != nil {
		js.logger.Error("job failed", zap.String("job", name), zap.Int("tenants", done), zap.Error(err), logging.Elapsed(start))
		return
	}
	js.logger.Info("job finished", zap.String("job", name), zap.Int("tenants", done), logging.Elapsed(start))
}

type gocronLogger struct {
	s *zap.SugaredLogger
}

func (l gocronLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l gocronLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l gocronLogger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
func (l gocronLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }
