package report

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// JobState values, in the order a job moves through them
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// JobKeyPrefix namespaces job status records
const JobKeyPrefix = "report_job:"

// DefaultJobTTL is how long a job's status stays readable
const DefaultJobTTL = 24 * time.Hour

var ErrJobNotFound = errors.New("report job not found")

// JobStatus is the progress record for one report job.
// Progress is a whole number percentage [0..100].
type JobStatus struct {
	JobID            string     `json:"jobId"`
	Status           string     `json:"status"`
	Progress         int        `json:"progress"`
	IncludeImages    bool       `json:"includeImages"`
	StartedAt        time.Time  `json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	TotalEntries     int        `json:"totalEntries"`
	ProcessedEntries int        `json:"processedEntries"`
	Pages            int        `json:"pages"`
	ImagesPlaced     int        `json:"imagesPlaced"`
	ImagesFailed     int        `json:"imagesFailed"`
	FileName         string     `json:"fileName"`
	FilePath         string     `json:"-"`
	Error            string     `json:"error,omitempty"`
}

// Done reports whether the job reached a terminal state
func (s JobStatus) Done() bool {
	return s.Status == JobCompleted || s.Status == JobFailed
}

// JobStore persists job status records
type JobStore interface {
	Save(ctx context.Context, st JobStatus) error
	Load(ctx context.Context, jobID string) (*JobStatus, error)
	// Purge drops expired records and returns how many were removed
	Purge(ctx context.Context) (int, error)
}

// storedStatus keeps FilePath in the serialized form, which JobStatus
// hides from API responses.
type storedStatus struct {
	JobStatus
	FilePath string `json:"filePath"`
}

func encodeStatus(st JobStatus) ([]byte, error) {
	return json.Marshal(storedStatus{JobStatus: st, FilePath: st.FilePath})
}

func decodeStatus(data []byte) (*JobStatus, error) {
	var s storedStatus
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	st := s.JobStatus
	st.FilePath = s.FilePath
	return &st, nil
}

// RedisJobStore keeps status JSON under report_job:<id> with a TTL that is
// refreshed on every save.
type RedisJobStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisJobStore(client *redis.Client, ttl time.Duration) *RedisJobStore {
	if ttl <= 0 {
		ttl = DefaultJobTTL
	}
	return &RedisJobStore{client: client, ttl: ttl}
}

func (s *RedisJobStore) Save(ctx context.Context, st JobStatus) error {
	data, err := encodeStatus(st)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, JobKeyPrefix+st.JobID, data, s.ttl).Err()
}

func (s *RedisJobStore) Load(ctx context.Context, jobID string) (*JobStatus, error) {
	val, err := s.client.Get(ctx, JobKeyPrefix+jobID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeStatus(val)
}

// Purge is a no-op; Redis expires the keys itself
func (s *RedisJobStore) Purge(ctx context.Context) (int, error) {
	return 0, nil
}

// MemoryJobStore is used when no Redis is configured
type MemoryJobStore struct {
	mu   sync.Mutex
	jobs map[string]memoryJob
	ttl  time.Duration
	now  func() time.Time
}

type memoryJob struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryJobStore(ttl time.Duration) *MemoryJobStore {
	if ttl <= 0 {
		ttl = DefaultJobTTL
	}
	return &MemoryJobStore{jobs: make(map[string]memoryJob), ttl: ttl, now: time.Now}
}

func (s *MemoryJobStore) Save(ctx context.Context, st JobStatus) error {
	data, err := encodeStatus(st)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.jobs[st.JobID] = memoryJob{data: data, expiresAt: s.now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryJobStore) Load(ctx context.Context, jobID string) (*JobStatus, error) {
	s.mu.Lock()
	job, ok := s.jobs[jobID]
	s.mu.Unlock()
	if !ok || !s.now().Before(job.expiresAt) {
		return nil, ErrJobNotFound
	}
	return decodeStatus(job.data)
}

func (s *MemoryJobStore) Purge(ctx context.Context) (int, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, job := range s.jobs {
		if !now.Before(job.expiresAt) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed, nil
}
