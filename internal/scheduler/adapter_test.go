package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"uplink/internal/domain"
	"uplink/internal/engine"
	"uplink/internal/store"
	"uplink/internal/transport"
)

type stubTransport struct {
	status   int
	requests int
}

func (t *stubTransport) Request(context.Context, transport.Request) (transport.Response, error) {
	t.requests++
	return transport.Response{StatusCode: t.status}, nil
}

func seedStore(t *testing.T, path string, recs ...domain.Record) {
	t.Helper()
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer st.Close()
	for _, rec := range recs {
		if err := st.Enqueue(context.Background(), rec); err != nil {
			t.Fatalf("Enqueue() failed: %v", err)
		}
	}
}

func noteRecord(localID string) domain.Record {
	return domain.Record{
		LocalID:   localID,
		QueueName: "notes",
		Payload:   []byte(`{"title":"hello"}`),
		Status:    domain.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func notesSetup(path string, tr transport.Transport) Setup {
	return Setup{
		StorePath:   path,
		Queues:      []domain.QueueConfig{{Name: "notes", Endpoint: "/api/notes"}},
		Credentials: engine.StaticCredential("tok"),
		Options:     []engine.Option{engine.WithTransport(tr), engine.WithBaseURL("https://api.test")},
	}
}

func TestEntryPointDeliversPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uplink.db")
	seedStore(t, path, noteRecord("a"))
	tr := &stubTransport{status: 200}

	ep := &EntryPoint{
		Factory: func(context.Context) (Setup, error) { return notesSetup(path, tr), nil },
		Logger:  zerolog.Nop(),
	}

	if ok := ep.Run(context.Background()); !ok {
		t.Fatalf("Run() = false, want true")
	}
	if tr.requests != 1 {
		t.Fatalf("got %d requests, want 1", tr.requests)
	}

	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer st.Close()
	if _, err := st.Get(context.Background(), "notes", "a"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("delivered record must be gone, got %v", err)
	}
}

func TestEntryPointSkipIsSuccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uplink.db")
	seedStore(t, path) // schema only, nothing pending
	tr := &stubTransport{status: 200}

	ep := &EntryPoint{
		Factory: func(context.Context) (Setup, error) { return notesSetup(path, tr), nil },
		Logger:  zerolog.Nop(),
	}

	if ok := ep.Run(context.Background()); !ok {
		t.Fatalf("a skipped cycle must not trigger scheduler retry")
	}
	if tr.requests != 0 {
		t.Fatalf("nothing should have been sent")
	}
}

func TestEntryPointFactoryFailure(t *testing.T) {
	ep := &EntryPoint{
		Factory: func(context.Context) (Setup, error) { return Setup{}, errors.New("no config") },
		Logger:  zerolog.Nop(),
	}
	if ok := ep.Run(context.Background()); ok {
		t.Fatalf("Run() = true, want false")
	}
}

func TestEntryPointFactoryPanic(t *testing.T) {
	ep := &EntryPoint{
		Factory: func(context.Context) (Setup, error) { panic("boom") },
		Logger:  zerolog.Nop(),
	}
	if ok := ep.Run(context.Background()); ok {
		t.Fatalf("a panic must be reported as failure, not propagated")
	}
}

func TestEntryPointCredentialFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uplink.db")
	seedStore(t, path, noteRecord("a"))

	setup := notesSetup(path, &stubTransport{status: 200})
	setup.Credentials = engine.StaticCredential("")

	ep := &EntryPoint{
		Factory: func(context.Context) (Setup, error) { return setup, nil },
		Logger:  zerolog.Nop(),
	}
	if ok := ep.Run(context.Background()); ok {
		t.Fatalf("a missing credential must fail the invocation")
	}
}

func TestEntryPointStoreOpenFailure(t *testing.T) {
	// parent directory does not exist, so sqlite cannot create the file
	path := filepath.Join(t.TempDir(), "missing", "uplink.db")

	ep := &EntryPoint{
		Factory: func(context.Context) (Setup, error) {
			return notesSetup(path, &stubTransport{status: 200}), nil
		},
		Logger: zerolog.Nop(),
	}
	if ok := ep.Run(context.Background()); ok {
		t.Fatalf("an unopenable store must fail the invocation")
	}
}

func TestEntryPointBackgroundOnlyYieldsToForeground(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uplink.db")
	seedStore(t, path, noteRecord("a"))

	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := st.SetFlag(context.Background(), store.FlagForeground, "true"); err != nil {
		t.Fatalf("SetFlag() failed: %v", err)
	}
	st.Close()

	tr := &stubTransport{status: 200}
	setup := notesSetup(path, tr)
	setup.BackgroundOnly = true

	ep := &EntryPoint{
		Factory: func(context.Context) (Setup, error) { return setup, nil },
		Logger:  zerolog.Nop(),
	}

	if ok := ep.Run(context.Background()); !ok {
		t.Fatalf("yielding to the foreground is a benign outcome")
	}
	if tr.requests != 0 {
		t.Fatalf("no delivery may happen while the app is foreground")
	}

	st, err = store.Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer st.Close()
	if _, err := st.Get(context.Background(), "notes", "a"); err != nil {
		t.Fatalf("record must still be stored: %v", err)
	}
}
