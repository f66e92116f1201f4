// Package task owns the video generation job lifecycle: an in-memory
// authoritative registry with a debounced JSON snapshot on disk, plus one
// fire-and-forget generation worker per job.
package task

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"videorelay/internal/calllog"
	"videorelay/internal/domain"
	"videorelay/internal/infra"
	"videorelay/internal/providers/grok"
)

const (
	defaultMaxTasks     = 1000
	defaultTaskTTL      = 24 * time.Hour
	defaultSaveInterval = 2 * time.Second
	defaultListLimit    = 20
)

// Generator drives one non-streaming upstream generation call.
type Generator interface {
	CreateCompletion(ctx context.Context, credential string, req grok.ChatRequest) (*grok.ChatResponse, []string, error)
}

// CredentialSource hands out upstream credentials for worker calls.
type CredentialSource interface {
	Next() string
}

// MediaCache resolves a remote media path to a locally materialized file.
type MediaCache interface {
	Lookup(remotePath string) (string, bool)
}

// CallLogger receives best-effort audit entries for upstream calls.
type CallLogger interface {
	Record(e calllog.Entry)
}

// CreateRequest carries the caller-supplied generation parameters. The HTTP
// layer validates them; the service applies defaults and echoes them back.
type CreateRequest struct {
	Prompt         string
	Model          string
	InputReference string
	Seconds        string
	Size           string
	User           string
	Country        string
}

// ListOptions selects and orders a page of tasks.
type ListOptions struct {
	Limit int
	After string
	Order string
	User  string
}

// ListResult is one page of tasks plus its cursor bounds.
type ListResult struct {
	Tasks   []domain.VideoTask
	HasMore bool
	FirstID string
	LastID  string
}

// Options configures a Service. Zero limit/TTL/interval values take the
// defaults above.
type Options struct {
	Store        *Store
	Generator    Generator
	Credentials  CredentialSource
	Cache        MediaCache
	CallLog      CallLogger
	Logger       infra.Logger
	MaxTasks     int
	TTL          time.Duration
	SaveInterval time.Duration
}

// record pairs a task with its insertion sequence. The sequence is the stable
// secondary sort key for listing when created_at ties. The caller country is
// kept off the task because it feeds audit entries, not the wire shape or the
// snapshot.
type record struct {
	task    domain.VideoTask
	seq     uint64
	country string
}

// Service is the single authoritative task registry for the process. One
// mutex serializes every access to the mapping, including the save path, so
// a snapshot is never taken mid-mutation. Expired tasks are evicted only when
// an insert pushes the registry over capacity; an under-capacity registry may
// hold tasks past their TTL indefinitely.
type Service struct {
	store        *Store
	gen          Generator
	creds        CredentialSource
	cache        MediaCache
	calls        CallLogger
	logger       infra.Logger
	maxTasks     int
	ttl          time.Duration
	saveInterval time.Duration

	mu    sync.Mutex
	tasks map[string]*record
	seq   uint64

	dirty    atomic.Bool
	loadOnce sync.Once

	lifecycle sync.Mutex
	done      chan struct{}
	saverDone chan struct{}
}

// NewService builds a stopped Service; call Start to load persisted state and
// launch the debounced saver.
func NewService(opts Options) *Service {
	s := &Service{
		store:        opts.Store,
		gen:          opts.Generator,
		creds:        opts.Credentials,
		cache:        opts.Cache,
		calls:        opts.CallLog,
		logger:       opts.Logger,
		maxTasks:     opts.MaxTasks,
		ttl:          opts.TTL,
		saveInterval: opts.SaveInterval,
		tasks:        make(map[string]*record),
	}
	if s.maxTasks <= 0 {
		s.maxTasks = defaultMaxTasks
	}
	if s.ttl <= 0 {
		s.ttl = defaultTaskTTL
	}
	if s.saveInterval <= 0 {
		s.saveInterval = defaultSaveInterval
	}
	return s
}

// Start loads the snapshot (once) and launches the periodic saver. It is safe
// to call more than once; later calls are no-ops.
func (s *Service) Start() {
	s.ensureLoaded()
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()
	if s.done != nil {
		return
	}
	s.done = make(chan struct{})
	s.saverDone = make(chan struct{})
	go s.saveLoop(s.done, s.saverDone)
	s.logger.Info().Dur("interval", s.saveInterval).Msg("task service: started")
}

// Shutdown stops the saver and performs one final save when mutations are
// pending. In-flight generation workers are deliberately not joined; they run
// to completion against a mapping that may no longer be saved.
func (s *Service) Shutdown() {
	s.lifecycle.Lock()
	done := s.done
	saverDone := s.saverDone
	s.done = nil
	s.saverDone = nil
	s.lifecycle.Unlock()
	if done == nil {
		return
	}
	close(done)
	<-saverDone
	if s.dirty.Swap(false) {
		s.save()
		s.logger.Info().Msg("task service: final save on shutdown")
	}
}

// Create registers a new queued task, evicts expired tasks when over
// capacity, and schedules exactly one generation worker for it. The returned
// record is the caller's copy; the worker has not run yet.
func (s *Service) Create(req CreateRequest) domain.VideoTask {
	s.ensureLoaded()

	t := domain.NewVideoTask(req.Prompt, domain.InternalModel(req.Model))
	if req.Seconds != "" {
		t.Seconds = req.Seconds
	}
	if req.Size != "" {
		t.Size = req.Size
	}
	t.InputReference = req.InputReference
	t.User = req.User
	t.ExpiresAt = t.CreatedAt + int64(s.ttl/time.Second)

	s.mu.Lock()
	s.seq++
	s.tasks[t.ID] = &record{task: t, seq: s.seq, country: req.Country}
	if len(s.tasks) > s.maxTasks {
		s.evictExpiredLocked()
	}
	s.mu.Unlock()

	s.markDirty()
	s.logger.Info().Str("task_id", t.ID).Str("model", t.Model).Msg("task service: task created")

	go s.process(t.ID)

	return t
}

// Get returns a copy of the task, or false when the id is unknown.
func (s *Service) Get(id string) (domain.VideoTask, bool) {
	s.ensureLoaded()
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.tasks[id]
	if !ok {
		return domain.VideoTask{}, false
	}
	return rec.task, true
}

// List returns one page of tasks sorted by created_at, descending unless
// order is "asc". Equal timestamps keep insertion order. The after cursor is
// exclusive; an unknown cursor id yields an empty page, not an error.
func (s *Service) List(opts ListOptions) ListResult {
	s.ensureLoaded()

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	// Copy the matching records while holding the lock; workers mutate the
	// live structs through mutate, so sorting pointers after unlocking would
	// race those writes.
	type listEntry struct {
		task domain.VideoTask
		seq  uint64
	}
	s.mu.Lock()
	working := make([]listEntry, 0, len(s.tasks))
	for _, rec := range s.tasks {
		if opts.User != "" && rec.task.User != opts.User {
			continue
		}
		working = append(working, listEntry{task: rec.task, seq: rec.seq})
	}
	s.mu.Unlock()

	sort.Slice(working, func(i, j int) bool { return working[i].seq < working[j].seq })
	asc := strings.EqualFold(opts.Order, "asc")
	sort.SliceStable(working, func(i, j int) bool {
		if asc {
			return working[i].task.CreatedAt < working[j].task.CreatedAt
		}
		return working[i].task.CreatedAt > working[j].task.CreatedAt
	})

	if opts.After != "" {
		start := len(working)
		for i, rec := range working {
			if rec.task.ID == opts.After {
				start = i + 1
				break
			}
		}
		working = working[start:]
	}

	hasMore := len(working) > limit
	if hasMore {
		working = working[:limit]
	}

	result := ListResult{HasMore: hasMore, Tasks: make([]domain.VideoTask, 0, len(working))}
	for _, rec := range working {
		result.Tasks = append(result.Tasks, rec.task)
	}
	if len(result.Tasks) > 0 {
		result.FirstID = result.Tasks[0].ID
		result.LastID = result.Tasks[len(result.Tasks)-1].ID
	}
	return result
}

// Delete removes and returns the task, or false when the id is unknown.
func (s *Service) Delete(id string) (domain.VideoTask, bool) {
	s.ensureLoaded()
	s.mu.Lock()
	rec, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	s.mu.Unlock()
	if !ok {
		return domain.VideoTask{}, false
	}
	s.markDirty()
	s.logger.Info().Str("task_id", id).Msg("task service: task deleted")
	return rec.task, true
}

// Remix derives a new task from a completed one, carrying the source video
// forward as the input reference. Returns ErrNotFound when the source is
// unknown and ErrNotCompleted when it is not in the completed state.
func (s *Service) Remix(sourceID, prompt string) (domain.VideoTask, error) {
	source, ok := s.Get(sourceID)
	if !ok {
		return domain.VideoTask{}, domain.ErrNotFound
	}
	if source.Status != domain.TaskStatusCompleted {
		return domain.VideoTask{}, domain.ErrNotCompleted
	}

	t := s.Create(CreateRequest{
		Prompt:         prompt,
		Model:          domain.PublicModel(source.Model),
		InputReference: source.VideoURL,
		Seconds:        source.Seconds,
		Size:           source.Size,
		User:           source.User,
	})
	s.mutate(t.ID, func(task *domain.VideoTask) {
		task.RemixedFromVideoID = sourceID
	})
	t.RemixedFromVideoID = sourceID
	return t, nil
}

// ContentPath resolves the locally cached file for a completed task. An empty
// path with a nil error means the asset is not materialized; the caller is
// expected to fall back to redirecting to the remote video URL.
func (s *Service) ContentPath(id string) (string, error) {
	t, ok := s.Get(id)
	if !ok {
		return "", domain.ErrNotFound
	}
	if t.Status != domain.TaskStatusCompleted {
		return "", domain.ErrNotCompleted
	}
	if t.VideoPath == "" || s.cache == nil {
		return "", nil
	}
	remotePath := "/" + strings.ReplaceAll(t.VideoPath, "-", "/")
	if local, ok := s.cache.Lookup(remotePath); ok {
		return local, nil
	}
	return "", nil
}

// evictExpiredLocked removes every task whose TTL has elapsed. Caller holds
// s.mu.
func (s *Service) evictExpiredLocked() {
	now := time.Now().Unix()
	removed := 0
	for id, rec := range s.tasks {
		if rec.task.ExpiresAt != 0 && rec.task.ExpiresAt < now {
			delete(s.tasks, id)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Info().Int("count", removed).Msg("task service: expired tasks evicted")
	}
}

// mutate applies fn to the live task under the registry lock and marks the
// store dirty. Workers funnel every write through here so reads never race.
func (s *Service) mutate(id string, fn func(t *domain.VideoTask)) bool {
	s.mu.Lock()
	rec, ok := s.tasks[id]
	if ok {
		fn(&rec.task)
	}
	s.mu.Unlock()
	if ok {
		s.markDirty()
	}
	return ok
}

func (s *Service) markDirty() {
	s.dirty.Store(true)
}

// callerCountry returns the country recorded at create time, for audit entries.
func (s *Service) callerCountry(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.tasks[id]; ok {
		return rec.country
	}
	return ""
}

// ensureLoaded lazily pulls the snapshot on first use so public operations
// never observe an unloaded registry even when Start was skipped.
func (s *Service) ensureLoaded() {
	s.loadOnce.Do(func() {
		loaded := s.store.Load()
		ids := make([]string, 0, len(loaded))
		for id := range loaded {
			ids = append(ids, id)
		}
		// Deterministic insertion sequence across restarts.
		sort.Slice(ids, func(i, j int) bool {
			a, b := loaded[ids[i]], loaded[ids[j]]
			if a.CreatedAt != b.CreatedAt {
				return a.CreatedAt < b.CreatedAt
			}
			return a.ID < b.ID
		})
		s.mu.Lock()
		for _, id := range ids {
			s.seq++
			s.tasks[id] = &record{task: loaded[id], seq: s.seq}
		}
		s.mu.Unlock()
	})
}

// saveLoop flushes at most one snapshot per interval when mutations occurred.
func (s *Service) saveLoop(done <-chan struct{}, saverDone chan<- struct{}) {
	defer close(saverDone)
	ticker := time.NewTicker(s.saveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if s.dirty.Swap(false) {
				s.save()
			}
		}
	}
}

// save snapshots the mapping to disk. The registry lock is held for the
// whole write so a snapshot is never taken mid-mutation; mutating callers
// absorb that disk latency. Save errors are logged and swallowed; the service
// keeps operating in memory until the next flush.
func (s *Service) save() {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.VideoTask, len(s.tasks))
	for id, rec := range s.tasks {
		out[id] = rec.task
	}
	if err := s.store.Save(out); err != nil {
		s.logger.Error().Err(err).Msg("task service: save failed")
		s.dirty.Store(true)
	}
}
