package engine

import (
	"context"
	"fmt"
	"time"

	"uplink/internal/domain"
	"uplink/internal/store"
	"uplink/internal/transport"
)

// oplog records the interleaving of store and transport calls so tests can
// assert ordering, most importantly that the in_progress write lands before
// the request goes out.
type oplog struct {
	entries []string
}

func (l *oplog) add(entry string) {
	if l == nil {
		return
	}
	l.entries = append(l.entries, entry)
}

type fakeStore struct {
	log *oplog

	pending    map[string][]domain.Record
	pendingErr map[string]error

	updates   []domain.Record
	updateErr func(rec domain.Record) error
	deletes   []string
	deleteErr error

	count    int
	countErr error
}

var _ store.Store = (*fakeStore)(nil)

func (s *fakeStore) Enqueue(context.Context, domain.Record) error { return nil }

func (s *fakeStore) Get(context.Context, string, string) (domain.Record, error) {
	return domain.Record{}, domain.ErrNotFound
}

func (s *fakeStore) GetAll(context.Context, string) ([]domain.Record, error) { return nil, nil }

func (s *fakeStore) GetPending(_ context.Context, queue string, _ int) ([]domain.Record, error) {
	if err := s.pendingErr[queue]; err != nil {
		return nil, err
	}
	return s.pending[queue], nil
}

func (s *fakeStore) Update(_ context.Context, rec domain.Record) error {
	if s.updateErr != nil {
		if err := s.updateErr(rec); err != nil {
			return err
		}
	}
	s.log.add(fmt.Sprintf("update %s %s", rec.LocalID, rec.Status))
	s.updates = append(s.updates, rec)
	return nil
}

func (s *fakeStore) Delete(_ context.Context, queue, localID string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.log.add("delete " + localID)
	s.deletes = append(s.deletes, queue+"/"+localID)
	return nil
}

func (s *fakeStore) PendingCount(context.Context, ...string) (int, error) {
	return s.count, s.countErr
}

func (s *fakeStore) Clear(context.Context, ...string) error { return nil }

func (s *fakeStore) SetFlag(context.Context, string, string) error { return nil }

func (s *fakeStore) GetFlag(context.Context, string) (store.Flag, error) {
	return store.Flag{}, domain.ErrNotFound
}

func (s *fakeStore) Close() error { return nil }

type fakeTransport struct {
	log *oplog

	handler  func(req transport.Request) (transport.Response, error)
	requests []transport.Request
}

func (t *fakeTransport) Request(_ context.Context, req transport.Request) (transport.Response, error) {
	t.log.add("request " + req.Endpoint + req.PathSuffix)
	t.requests = append(t.requests, req)
	if t.handler == nil {
		return transport.Response{StatusCode: 200}, nil
	}
	return t.handler(req)
}

type fakeNotifier struct {
	summaries []string
	skips     []string
	err       error
}

func (n *fakeNotifier) QueueSummary(_ context.Context, queue string, delivered, failed int) error {
	n.summaries = append(n.summaries, fmt.Sprintf("%s %d/%d", queue, delivered, failed))
	return n.err
}

func (n *fakeNotifier) SyncSkipped(_ context.Context, reason string) error {
	n.skips = append(n.skips, reason)
	return n.err
}

// scriptedForeground returns its results in call order and repeats the last
// one once the script runs out.
type scriptedForeground struct {
	results []bool
	calls   int
}

func (s *scriptedForeground) Foreground(context.Context) (bool, error) {
	i := s.calls
	s.calls++
	if i >= len(s.results) {
		i = len(s.results) - 1
	}
	return s.results[i], nil
}

type fakeClock struct {
	t time.Time
}

func (c fakeClock) Now() time.Time { return c.t }

type fakeCreds struct {
	token string
	err   error
	calls int
}

func (c *fakeCreds) Token(context.Context) (string, error) {
	c.calls++
	return c.token, c.err
}

func testClockTime() time.Time {
	return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
}

func pendingRecord(queue, localID string) domain.Record {
	suffix := "/" + localID
	return domain.Record{
		LocalID:    localID,
		QueueName:  queue,
		Payload:    []byte(`{"title":"hello"}`),
		Status:     domain.StatusPending,
		CreatedAt:  time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
		PathSuffix: &suffix,
	}
}
