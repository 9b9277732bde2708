package tripsync

import (
	"context"
	"sync"

	"github.com/atinyakov/TripSync/internal/client/remote"
	"github.com/atinyakov/TripSync/internal/models"
)

var (
	_ LocalStore       = (*memStore)(nil)
	_ RemoteCollection = (*fakeRemote)(nil)
)

// memStore keeps records in insertion order.
type memStore struct {
	mu      sync.Mutex
	records []models.TripRecord

	insertErr error
	deleteErr error
	queryErr  error
}

func (m *memStore) QueryByUser(_ context.Context, userID string) ([]models.TripRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	out := []models.TripRecord{}
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) Insert(_ context.Context, p models.TripRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	m.records = append(m.records, p)
	return nil
}

func (m *memStore) DeleteByID(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	kept := m.records[:0]
	for _, r := range m.records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

func (m *memStore) ids() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int64, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.ID)
	}
	return out
}

// fakeRemote upserts by id like the server does. Any func field that is set
// replaces the default behaviour.
type fakeRemote struct {
	mu      sync.Mutex
	records map[int64]models.TripRecord
	order   []int64

	upsertCalls [][]models.TripRecord
	deleteCalls []int64

	UpsertBatchFunc func(ctx context.Context, userID string, records []models.TripRecord) error
	ListByUserFunc  func(ctx context.Context, userID string) ([]models.TripRecord, error)
	DeleteByIDFunc  func(ctx context.Context, id int64) error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{records: map[int64]models.TripRecord{}}
}

func (f *fakeRemote) UpsertBatch(ctx context.Context, userID string, records []models.TripRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	batch := make([]models.TripRecord, len(records))
	copy(batch, records)
	f.upsertCalls = append(f.upsertCalls, batch)
	if f.UpsertBatchFunc != nil {
		return f.UpsertBatchFunc(ctx, userID, records)
	}
	for _, r := range records {
		r.UserID = userID
		if _, ok := f.records[r.ID]; !ok {
			f.order = append(f.order, r.ID)
		}
		f.records[r.ID] = r
	}
	return nil
}

func (f *fakeRemote) ListByUser(ctx context.Context, userID string) ([]models.TripRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListByUserFunc != nil {
		return f.ListByUserFunc(ctx, userID)
	}
	out := []models.TripRecord{}
	for _, id := range f.order {
		if r, ok := f.records[id]; ok && r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRemote) DeleteByID(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls = append(f.deleteCalls, id)
	if f.DeleteByIDFunc != nil {
		return f.DeleteByIDFunc(ctx, id)
	}
	if _, ok := f.records[id]; !ok {
		return &remote.APIError{StatusCode: 404, Message: "Place not found"}
	}
	delete(f.records, id)
	return nil
}

type seqIDs struct{ next int64 }

func (s *seqIDs) NextID() int64 {
	s.next++
	return s.next
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recordingNotifier) Notify(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
}

func (r *recordingNotifier) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.msgs...)
}
