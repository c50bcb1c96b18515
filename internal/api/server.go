// Package api is the daemon's admin surface: enqueue and inspect records,
// trigger cycles, and purge queues over HTTP.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"

	"uplink"
)

type Server struct {
	r      *chi.Mux
	client *uplink.Client
}

func NewServer(client *uplink.Client) http.Handler {
	return NewServerWithDebug(client, false)
}

func NewServerWithDebug(client *uplink.Client, enableDebug bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	s := &Server{r: r, client: client}

	r.Get("/health", s.health)
	r.Get("/metrics", s.metrics)

	r.Post("/api/sync", s.triggerSync)
	r.Get("/api/pending-count", s.pendingCount)
	r.Delete("/api/records", s.clearAll)
	r.Get("/api/queues", s.listQueues)

	r.Route("/api/queues/{queue}", func(r chi.Router) {
		r.Post("/records", s.enqueue)
		r.Get("/records", s.listRecords)
		r.Get("/records/{id}", s.getRecord)
		r.Delete("/records/{id}", s.removeRecord)
		r.Post("/records/{id}/requeue", s.requeueRecord)
	})

	// Debug routes (pprof)
	if enableDebug {
		r.HandleFunc("/debug/pprof/", pprof.Index)
		r.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		r.HandleFunc("/debug/pprof/profile", pprof.Profile)
		r.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		r.HandleFunc("/debug/pprof/trace", pprof.Trace)
		r.Handle("/debug/pprof/goroutine", pprof.Handler("goroutine"))
		r.Handle("/debug/pprof/heap", pprof.Handler("heap"))
	}

	return r
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("content-type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "uplink_up 1\n")
	if n, err := s.client.PendingCount(r.Context()); err == nil {
		fmt.Fprintf(w, "uplink_pending_records %d\n", n)
	}
}

type enqueueReq struct {
	Payload    json.RawMessage `json:"payload"`
	LocalID    string          `json:"local_id"`
	ServerID   *string         `json:"server_id"`
	PathSuffix *string         `json:"path_suffix"`
}

type enqueueResp struct {
	LocalID string `json:"local_id"`
}

func (s *Server) enqueue(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")

	var req enqueueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), 400)
		return
	}
	if len(req.Payload) == 0 || !json.Valid(req.Payload) {
		http.Error(w, "payload must be a JSON value", 400)
		return
	}

	var opts []uplink.EnqueueOption
	if req.LocalID != "" {
		opts = append(opts, uplink.WithLocalID(req.LocalID))
	}
	if req.ServerID != nil {
		opts = append(opts, uplink.WithServerID(*req.ServerID))
	}
	if req.PathSuffix != nil {
		opts = append(opts, uplink.WithPathSuffix(*req.PathSuffix))
	}

	id, err := s.client.EnqueueRaw(r.Context(), queue, req.Payload, opts...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, enqueueResp{LocalID: id})
}

func (s *Server) listRecords(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")

	var (
		recs []uplink.Record
		err  error
	)
	if pending := r.URL.Query().Get("pending"); pending == "1" || pending == "true" {
		recs, err = s.client.ListPending(r.Context(), queue)
	} else {
		recs, err = s.client.ListAll(r.Context(), queue)
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []uplink.Record{}
	}
	writeJSON(w, 200, recs)
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")
	id := chi.URLParam(r, "id")

	rec, err := s.client.Get(r.Context(), queue, id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, rec)
}

func (s *Server) removeRecord(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")
	id := chi.URLParam(r, "id")

	if err := s.client.Remove(r.Context(), queue, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) requeueRecord(w http.ResponseWriter, r *http.Request) {
	queue := chi.URLParam(r, "queue")
	id := chi.URLParam(r, "id")

	if err := s.client.Requeue(r.Context(), queue, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type syncResp struct {
	Delivered   int       `json:"delivered"`
	Failed      int       `json:"failed"`
	SkipReason  string    `json:"skip_reason,omitempty"`
	Interrupted bool      `json:"interrupted"`
	CompletedAt time.Time `json:"completed_at"`
}

func (s *Server) triggerSync(w http.ResponseWriter, r *http.Request) {
	summary, err := s.client.SyncNow(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, syncResp{
		Delivered:   summary.Delivered,
		Failed:      summary.Failed,
		SkipReason:  summary.SkipReason,
		Interrupted: summary.Interrupted,
		CompletedAt: summary.CompletedAt,
	})
}

type pendingCountResp struct {
	Count int `json:"count"`
}

func (s *Server) pendingCount(w http.ResponseWriter, r *http.Request) {
	n, err := s.client.PendingCount(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, 200, pendingCountResp{Count: n})
}

func (s *Server) clearAll(w http.ResponseWriter, r *http.Request) {
	if err := s.client.ClearAll(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type queueInfo struct {
	Name            string `json:"name"`
	Endpoint        string `json:"endpoint"`
	Method          string `json:"method"`
	SuccessStatuses []int  `json:"success_statuses"`
	MaxRetries      int    `json:"max_retries"`
}

func (s *Server) listQueues(w http.ResponseWriter, r *http.Request) {
	queues := s.client.Queues()
	out := make([]queueInfo, 0, len(queues))
	for _, q := range queues {
		out = append(out, queueInfo{
			Name:            q.Name,
			Endpoint:        q.Endpoint,
			Method:          q.Method,
			SuccessStatuses: q.SuccessStatuses,
			MaxRetries:      q.MaxRetries,
		})
	}
	writeJSON(w, 200, out)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, uplink.ErrUnknownQueue), errors.Is(err, uplink.ErrNotFound):
		http.Error(w, err.Error(), 404)
	case errors.Is(err, uplink.ErrDuplicate):
		http.Error(w, err.Error(), 409)
	case errors.Is(err, uplink.ErrAuthentication):
		http.Error(w, err.Error(), 502)
	default:
		http.Error(w, err.Error(), 500)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
