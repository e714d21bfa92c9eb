package training

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transactai/transactai/internal/artifact"
	"github.com/transactai/transactai/internal/common"
	"github.com/transactai/transactai/internal/embed"
	"github.com/transactai/transactai/internal/model"
)

// fakeStorage is an in-memory service.Storage for retrainer tests. The
// optional gate channel blocks corpus reads so tests can hold a job open.
type fakeStorage struct {
	mu       sync.Mutex
	corpus   []model.TrainingExample
	feedback []model.FeedbackEntry
	gate     chan struct{}
}

func (f *fakeStorage) GetCategories(_ context.Context) ([]model.Category, error) {
	return nil, nil
}

func (f *fakeStorage) GetCategoryByName(_ context.Context, name string) (*model.Category, error) {
	return nil, common.ErrUnknownCategory
}

func (f *fakeStorage) CreateCategory(_ context.Context, name, description string) (*model.Category, error) {
	return &model.Category{Name: name, Description: description, IsActive: true}, nil
}

func (f *fakeStorage) SaveTrainingExamples(_ context.Context, examples []model.TrainingExample) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.corpus = append(f.corpus, examples...)
	return nil
}

func (f *fakeStorage) GetTrainingExamples(_ context.Context) ([]model.TrainingExample, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.TrainingExample(nil), f.corpus...), nil
}

func (f *fakeStorage) AppendFeedback(_ context.Context, entry model.FeedbackEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedback = append(f.feedback, entry)
	return nil
}

func (f *fakeStorage) GetFeedback(_ context.Context) ([]model.FeedbackEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.FeedbackEntry(nil), f.feedback...), nil
}

func (f *fakeStorage) CountFeedbackSince(_ context.Context, _ time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.feedback), nil
}

func (f *fakeStorage) Migrate(_ context.Context) error { return nil }

func (f *fakeStorage) Close() error { return nil }

func TestRetrainerTrainsAndSwaps(t *testing.T) {
	store := &fakeStorage{corpus: separableCorpus(10)}
	embedder := embed.NewHashingEmbedder(128)
	holder := artifact.NewHolder(nil)

	r := NewRetrainer(store, embedder, holder, t.TempDir(), Hyperparameters{}, time.Minute)

	job, err := r.Trigger(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.Wait(context.Background(), job))

	assert.Equal(t, JobSucceeded, job.Status)
	require.NotNil(t, job.Report)
	assert.InDelta(t, 1.0, job.Report.Metrics.Accuracy, 1e-9)

	live := holder.Current()
	require.NotNil(t, live, "holder must serve the new artifact set")
	assert.Equal(t, []string{"Food", "Fuel"}, live.Meta.Labels)

	// Persisted artifacts load back as one consistent generation.
	got, ok := r.Job(job.ID)
	require.True(t, ok)
	assert.Same(t, job, got)
}

func TestRetrainerSingleFlight(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeStorage{corpus: separableCorpus(10), gate: gate}
	holder := artifact.NewHolder(nil)

	r := NewRetrainer(store, embed.NewHashingEmbedder(64), holder, t.TempDir(), Hyperparameters{}, time.Minute)

	first, err := r.Trigger(context.Background())
	require.NoError(t, err)

	_, err = r.Trigger(context.Background())
	assert.True(t, errors.Is(err, common.ErrRetrainInProgress))

	close(gate)
	require.NoError(t, r.Wait(context.Background(), first))
	assert.Equal(t, JobSucceeded, first.Status)

	// Once the first job finishes, the slot frees up.
	second, err := r.Trigger(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.Wait(context.Background(), second))
}

func TestRetrainerFailureLeavesModelUntouched(t *testing.T) {
	store := &fakeStorage{} // empty corpus

	embedder := embed.NewHashingEmbedder(64)
	previous := &artifact.Set{Meta: artifact.Metadata{Labels: []string{"Food", "Fuel"}}}
	holder := artifact.NewHolder(previous)

	r := NewRetrainer(store, embedder, holder, t.TempDir(), Hyperparameters{}, time.Minute)

	job, err := r.Trigger(context.Background())
	require.NoError(t, err)
	require.NoError(t, r.Wait(context.Background(), job))

	assert.Equal(t, JobFailed, job.Status)
	assert.NotEmpty(t, job.Err)
	assert.Same(t, previous, holder.Current(), "failed run must not swap the live set")
}

func TestRetrainerJobLookupUnknownID(t *testing.T) {
	r := NewRetrainer(&fakeStorage{}, embed.NewHashingEmbedder(64), artifact.NewHolder(nil), t.TempDir(), Hyperparameters{}, 0)

	_, ok := r.Job("no-such-job")
	assert.False(t, ok)
}

func TestSchedulerNextRun(t *testing.T) {
	s := NewScheduler(nil, nil, 2, 30)

	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	next := s.nextRun(now)
	assert.Equal(t, time.Date(2026, 3, 10, 2, 30, 0, 0, time.UTC), next)

	now = time.Date(2026, 3, 10, 3, 0, 0, 0, time.UTC)
	next = s.nextRun(now)
	assert.Equal(t, time.Date(2026, 3, 11, 2, 30, 0, 0, time.UTC), next)
}

func TestSchedulerFireSkipsWithoutFeedback(t *testing.T) {
	store := &fakeStorage{corpus: separableCorpus(10)}
	holder := artifact.NewHolder(nil)
	r := NewRetrainer(store, embed.NewHashingEmbedder(64), holder, t.TempDir(), Hyperparameters{}, time.Minute)

	s := NewScheduler(r, store, 2, 0)
	s.fire(context.Background())

	assert.Nil(t, holder.Current(), "no feedback must mean no retrain")
}

func TestSchedulerFireRetrainsOnFeedback(t *testing.T) {
	store := &fakeStorage{
		corpus: separableCorpus(10),
		feedback: []model.FeedbackEntry{
			{CleanText: "netflix amt monthly", CorrectedCategory: "Entertainment"},
		},
	}
	holder := artifact.NewHolder(nil)
	r := NewRetrainer(store, embed.NewHashingEmbedder(64), holder, t.TempDir(), Hyperparameters{}, time.Minute)

	s := NewScheduler(r, store, 2, 0)
	s.fire(context.Background())

	require.NotNil(t, holder.Current())
	assert.False(t, s.lastRun.IsZero(), "successful run must advance the watermark")
}
