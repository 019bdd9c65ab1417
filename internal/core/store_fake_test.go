package core

import (
	"context"
	"sync"
)

// memStore is an in-memory WorkerStore for service tests.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]WorkerFields
	batches   [][]WorkerFields
	insertErr error
	writeErr  error
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, rows: map[int64]WorkerFields{}}
}

func (m *memStore) ListWorkers(ctx context.Context) ([]Worker, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Worker, 0, len(m.rows))
	for id := int64(1); id < m.nextID; id++ {
		f, ok := m.rows[id]
		if !ok {
			continue
		}
		out = append(out, Worker{
			ID: id, Name: f.Name, EmployeeID: f.EmployeeID, Email: f.Email,
			PhoneNumber: f.PhoneNumber, Department: f.Department,
			DateOfBirth: FormatDate(f.DateOfBirth), DateOfJoining: FormatDate(f.DateOfJoining),
			Role: f.Role,
		})
	}
	return out, nil
}

func (m *memStore) CreateWorker(ctx context.Context, f WorkerFields) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	id := m.nextID
	m.nextID++
	m.rows[id] = f
	return id, nil
}

func (m *memStore) UpdateWorker(ctx context.Context, id int64, f WorkerFields) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	m.rows[id] = f
	return 1, nil
}

func (m *memStore) DeleteWorker(ctx context.Context, id int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return 0, nil
	}
	delete(m.rows, id)
	return 1, nil
}

func (m *memStore) InsertWorkers(ctx context.Context, rows []WorkerFields, batchSize int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	m.batches = append(m.batches, rows)
	for _, f := range rows {
		m.rows[m.nextID] = f
		m.nextID++
	}
	return int64(len(rows)), nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
