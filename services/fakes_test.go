package services

import (
	"sync"
	"time"

	"crosspost/models"
	"crosspost/publishers"
)

// fakeStore is an in-memory PostStore recording every mutation so tests can
// assert on persistence order and content.
type fakeStore struct {
	mu sync.Mutex

	posts    map[string]*models.Post
	upcoming []*models.Post
	creds    map[models.Platform]*models.PlatformCredentials

	getPostErr  error
	upcomingErr error

	scheduleUpdates map[string]time.Time
	timezoneUpdates map[string]string
	externalIDs     map[models.Platform]string
	savedResults    []models.PublishResult
	outcomes        []outcomeRecord
}

type outcomeRecord struct {
	postID string
	status models.PostStatus
	errors []models.PublishError
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		posts:           make(map[string]*models.Post),
		creds:           make(map[models.Platform]*models.PlatformCredentials),
		scheduleUpdates: make(map[string]time.Time),
		timezoneUpdates: make(map[string]string),
		externalIDs:     make(map[models.Platform]string),
	}
}

func (f *fakeStore) GetPost(id string) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getPostErr != nil {
		return nil, f.getPostErr
	}
	return f.posts[id], nil
}

func (f *fakeStore) GetUpcomingScheduledPosts() ([]*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upcomingErr != nil {
		return nil, f.upcomingErr
	}
	return f.upcoming, nil
}

func (f *fakeStore) UpdatePostSchedule(id string, scheduledFor time.Time, timezone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduleUpdates[id] = scheduledFor
	if timezone != "" {
		f.timezoneUpdates[id] = timezone
	}
	return nil
}

func (f *fakeStore) SetPostExternalID(id string, platform models.Platform, externalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.externalIDs[platform] = externalID
	return nil
}

func (f *fakeStore) SetPostOutcome(id string, status models.PostStatus, publishedAt time.Time, publishErrors []models.PublishError) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes = append(f.outcomes, outcomeRecord{postID: id, status: status, errors: publishErrors})
	return nil
}

func (f *fakeStore) SavePublishResult(postID string, result models.PublishResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedResults = append(f.savedResults, result)
	return nil
}

func (f *fakeStore) GetCredentials(userID string, platform models.Platform) (*models.PlatformCredentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creds[platform], nil
}

func (f *fakeStore) lastOutcome() *outcomeRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.outcomes) == 0 {
		return nil
	}
	rec := f.outcomes[len(f.outcomes)-1]
	return &rec
}

// fakePublisher returns a canned result, counting invocations. Setting
// panicWith makes Publish panic instead.
type fakePublisher struct {
	mu        sync.Mutex
	result    models.PublishResult
	panicWith any
	calls     int
	payloads  []models.Payload
}

func (p *fakePublisher) Publish(payload models.Payload, cred *models.PlatformCredentials) models.PublishResult {
	p.mu.Lock()
	p.calls++
	p.payloads = append(p.payloads, payload)
	p.mu.Unlock()
	if p.panicWith != nil {
		panic(p.panicWith)
	}
	return p.result
}

func (p *fakePublisher) VerifyCredentials(cred *models.PlatformCredentials) models.CredentialStatus {
	if cred == nil || cred.AccessToken == "" {
		return models.CredentialStatus{Platform: p.result.Platform, Valid: false, Error: "No credentials stored"}
	}
	return models.CredentialStatus{Platform: p.result.Platform, Valid: true}
}

func (p *fakePublisher) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func registryWith(entries map[models.Platform]*fakePublisher) publishers.Registry {
	r := publishers.Registry{}
	for platform, pub := range entries {
		r[platform] = pub
	}
	return r
}
