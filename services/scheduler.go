package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"crosspost/logger"
	"crosspost/models"

	"github.com/robfig/cron/v3"
)

// scheduledJob tracks one armed trigger. The job table owns the cron entry:
// it is removed on unschedule, reschedule, fire, and shutdown.
type scheduledJob struct {
	postID      string
	entryID     cron.EntryID
	scheduledAt time.Time
}

// ScheduleResult reports a successful SchedulePost call.
type ScheduleResult struct {
	PostID      string          `json:"post_id"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	TriggerSpec string          `json:"trigger_spec,omitempty"`
	Immediate   bool            `json:"immediate,omitempty"`
	Outcome     *PublishOutcome `json:"outcome,omitempty"`
}

// ScheduledJobInfo is a read-only view of one job table entry.
type ScheduledJobInfo struct {
	PostID      string    `json:"post_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
}

// Scheduler owns the in-memory job table mapping post ids to armed cron
// triggers. Each trigger is derived from the post's publish time rendered in
// its own timezone and fires once; the scheduler removes it after the first
// fire. At most one active job exists per post id.
type Scheduler struct {
	mu        sync.Mutex
	cron      *cron.Cron
	store     PostStore
	publisher *PublisherService
	jobs      map[string]*scheduledJob
	now       func() time.Time
	stopped   bool
}

func NewScheduler(store PostStore, publisher *PublisherService) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		store:     store,
		publisher: publisher,
		jobs:      make(map[string]*scheduledJob),
		now:       time.Now,
	}
}

// Start begins trigger evaluation. Triggers may be registered before Start;
// they only fire afterwards.
func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Infof("scheduler started")
}

// LoadScheduledPosts re-arms every post still marked scheduled with a future
// fire time. Store failures are logged and skipped; startup proceeds without
// the missed posts.
func (s *Scheduler) LoadScheduledPosts() {
	posts, err := s.store.GetUpcomingScheduledPosts()
	if err != nil {
		logger.Errorf("loading scheduled posts failed: %v", err)
		return
	}

	armed := 0
	for _, post := range posts {
		if _, err := s.SchedulePost(post); err != nil {
			logger.Errorf("re-arming scheduled post failed post_id=%s err=%v", post.ID, err)
			continue
		}
		armed++
	}
	logger.Infof("scheduler re-armed %d of %d scheduled posts", armed, len(posts))
}

// SchedulePost registers a one-shot trigger for the post's publish time. A
// fire time at or before now publishes immediately and registers nothing: a
// trigger computed for "now" could never fire because its derived fields
// already elapsed within the same clock tick. Scheduling a post that
// already has an active job cancels the prior job first.
func (s *Scheduler) SchedulePost(post *models.Post) (*ScheduleResult, error) {
	if post == nil || post.ScheduledFor == nil {
		return nil, fmt.Errorf("%w: post has no scheduled time", ErrInvalidSchedule)
	}
	scheduledAt := *post.ScheduledFor

	if !scheduledAt.After(s.now()) {
		// The one-job-per-post invariant holds on this path too: a prior
		// trigger left armed would fire a second publish later.
		s.removeJob(post.ID)
		logger.Infof("schedule time already due, publishing immediately post_id=%s scheduled_for=%s",
			post.ID, scheduledAt.UTC().Format(time.RFC3339))
		outcome := s.publisher.PublishPost(post.ID)
		return &ScheduleResult{
			PostID:      post.ID,
			ScheduledAt: scheduledAt,
			Immediate:   true,
			Outcome:     outcome,
		}, nil
	}

	spec, err := triggerSpec(scheduledAt, post.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.jobs[post.ID]; ok {
		s.cron.Remove(prev.entryID)
		delete(s.jobs, post.ID)
	}

	postID := post.ID
	entryID, err := s.cron.AddFunc(spec, func() { s.fire(postID) })
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}

	s.jobs[postID] = &scheduledJob{
		postID:      postID,
		entryID:     entryID,
		scheduledAt: scheduledAt,
	}

	logger.Infof("post scheduled post_id=%s trigger=%q fire_at=%s",
		postID, spec, scheduledAt.UTC().Format(time.RFC3339))
	return &ScheduleResult{
		PostID:      postID,
		ScheduledAt: scheduledAt,
		TriggerSpec: spec,
	}, nil
}

// UnschedulePost cancels a pending trigger. Returns ErrJobNotFound when no
// job is armed for the post; a trigger that is mid-fire cannot be cancelled,
// only future fires are prevented.
func (s *Scheduler) UnschedulePost(postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[postID]
	if !ok {
		return ErrJobNotFound
	}

	s.cron.Remove(job.entryID)
	delete(s.jobs, postID)
	logger.Infof("post unscheduled post_id=%s", postID)
	return nil
}

// ReschedulePost moves a post to a new fire time: cancel the existing
// trigger if any, persist the new time, re-create the trigger. A non-empty
// timezone also moves the post to that zone; empty keeps the stored one.
func (s *Scheduler) ReschedulePost(postID string, newTime time.Time, timezone string) (*ScheduleResult, error) {
	if err := s.UnschedulePost(postID); err != nil && !errors.Is(err, ErrJobNotFound) {
		return nil, err
	}

	post, err := s.store.GetPost(postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}

	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
		}
		post.Timezone = timezone
	}

	if err := s.store.UpdatePostSchedule(postID, newTime, timezone); err != nil {
		return nil, err
	}

	post.ScheduledFor = &newTime
	post.Status = models.StatusScheduled
	return s.SchedulePost(post)
}

// ScheduledJobs returns a snapshot of the job table for observability.
func (s *Scheduler) ScheduledJobs() []ScheduledJobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs := make([]ScheduledJobInfo, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, ScheduledJobInfo{PostID: job.postID, ScheduledAt: job.scheduledAt})
	}
	return jobs
}

// Shutdown cancels every pending trigger and stops the cron runner.
// Idempotent and safe during process termination; in-flight publishes are
// not waited for, the orchestrator leaves the store consistent regardless.
func (s *Scheduler) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true

	for postID, job := range s.jobs {
		s.cron.Remove(job.entryID)
		delete(s.jobs, postID)
	}
	s.cron.Stop()
	logger.Infof("scheduler stopped")
}

// fire runs when a trigger goes off. It must never propagate a panic into
// the cron runner, and it always removes the job table entry, even when the
// orchestrator reports failure.
func (s *Scheduler) fire(postID string) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("recovered panic in trigger fire post_id=%s panic=%v", postID, r)
		}
		s.removeJob(postID)
	}()

	logger.Infof("trigger fired post_id=%s", postID)
	outcome := s.publisher.PublishPost(postID)
	if !outcome.Success {
		logger.Warnf("scheduled publish completed with errors post_id=%s errors=%d", postID, len(outcome.Errors))
	}
}

func (s *Scheduler) removeJob(postID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[postID]; ok {
		s.cron.Remove(job.entryID)
		delete(s.jobs, postID)
	}
}

// triggerSpec renders an instant as a cron expression in the post's
// timezone: minute, hour, day-of-month and month fixed, day-of-week
// wildcarded. The expression would recur yearly, but the scheduler removes
// the entry after its first fire.
func triggerSpec(t time.Time, timezone string) (string, error) {
	if timezone == "" {
		timezone = "UTC"
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return "", err
	}

	local := t.In(loc)
	return fmt.Sprintf("CRON_TZ=%s %d %d %d %d *",
		timezone, local.Minute(), local.Hour(), local.Day(), int(local.Month())), nil
}
