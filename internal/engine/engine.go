// Package engine drives delivery: draining one queue record by record, and
// orchestrating guarded cycles across every registered queue.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"uplink/internal/domain"
	"uplink/internal/guard"
	"uplink/internal/store"
	"uplink/internal/transport"
)

// Engine drains a single queue. Before any record goes on the wire its
// in_progress transition is persisted, so a crash always leaves durable
// evidence of the in-flight record. At most one record per queue is in
// flight at a time.
//
// All fields must be set; NewOrchestrator does so for the normal path, and
// tests construct Engines directly.
type Engine struct {
	Store     store.Store
	Transport transport.Transport

	// Foreground, when non-nil, is polled before every record so a cycle
	// yields promptly once the app takes over. Nil disables the check.
	Foreground guard.ForegroundSignal

	// Notifier receives one summary per drained queue. Nil disables
	// notifications entirely.
	Notifier Notifier

	Clock  Clock
	Logger zerolog.Logger

	// BaseURL, Headers and Timeout apply to every request of the cycle;
	// queue-level headers override cycle-level ones.
	BaseURL string
	Headers map[string]string
	Timeout time.Duration
}

// DrainQueue attempts delivery of every eligible record of one queue, oldest
// first, and returns the outcome of each attempt. A foreground transition
// stops the drain with domain.ErrInterrupted; outcomes committed so far
// stand. Store failures abort the drain, transport failures only the record.
func (e *Engine) DrainQueue(ctx context.Context, cfg domain.QueueConfig, token string) ([]domain.Outcome, error) {
	cfg = cfg.Normalized()

	pending, err := e.Store.GetPending(ctx, cfg.Name, cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("load pending records: %w", err)
	}
	if len(pending) == 0 {
		return nil, nil
	}

	log := e.Logger.With().Str("queue", cfg.Name).Logger()
	log.Debug().Int("records", len(pending)).Msg("draining queue")

	outcomes := make([]domain.Outcome, 0, len(pending))
	for _, rec := range pending {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		if e.interrupted(ctx) {
			log.Info().
				Int("remaining", len(pending)-len(outcomes)).
				Msg("app in foreground, stopping queue drain")
			return outcomes, domain.ErrInterrupted
		}

		rec.Status = domain.StatusInProgress
		if err := e.Store.Update(ctx, rec); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// removed while this cycle was running; nothing left to send
				log.Debug().Str("local_id", rec.LocalID).Msg("record gone, skipping")
				continue
			}
			return outcomes, fmt.Errorf("mark record in progress: %w", err)
		}

		outcomes = append(outcomes, e.deliver(ctx, log, cfg, rec, token))
	}

	e.summarize(ctx, log, cfg.Name, outcomes)
	return outcomes, nil
}

func (e *Engine) deliver(ctx context.Context, log zerolog.Logger, cfg domain.QueueConfig, rec domain.Record, token string) domain.Outcome {
	resp, err := e.Transport.Request(ctx, transport.Request{
		BaseURL:    e.BaseURL,
		Endpoint:   cfg.Endpoint,
		PathSuffix: suffixFor(cfg, rec),
		Method:     cfg.Method,
		Headers:    e.requestHeaders(cfg, token),
		Body:       rec.Payload,
		Timeout:    e.Timeout,
	})
	if err == nil && !cfg.Accepts(resp.StatusCode) {
		err = &domain.RejectionError{StatusCode: resp.StatusCode}
	}
	if err != nil {
		return e.recordFailure(ctx, log, cfg, rec, err, resp.StatusCode)
	}
	return e.recordSuccess(ctx, log, cfg, rec, resp)
}

// recordSuccess deletes the delivered record; confirmed records are never
// retained. If the delete itself fails the record stays in_progress, out of
// future cycles, for manual resolution.
func (e *Engine) recordSuccess(ctx context.Context, log zerolog.Logger, cfg domain.QueueConfig, rec domain.Record, resp transport.Response) domain.Outcome {
	serverID := extractServerID(cfg.ExtractID, resp.Body)

	if err := e.Store.Delete(ctx, rec.QueueName, rec.LocalID); err != nil {
		log.Error().Err(err).Str("local_id", rec.LocalID).Msg("delivered but could not delete record")
	}
	if cfg.OnSuccess != nil {
		cfg.OnSuccess(rec.LocalID, serverID)
	}

	log.Debug().
		Str("local_id", rec.LocalID).
		Int("status", resp.StatusCode).
		Msg("record delivered")

	return domain.Outcome{
		QueueName:  rec.QueueName,
		LocalID:    rec.LocalID,
		Success:    true,
		ServerID:   serverID,
		StatusCode: resp.StatusCode,
	}
}

func (e *Engine) recordFailure(ctx context.Context, log zerolog.Logger, cfg domain.QueueConfig, rec domain.Record, cause error, status int) domain.Outcome {
	rec.RetryCount++
	rec.Status = domain.StatusFailed
	if rec.RetryCount >= cfg.MaxRetries {
		rec.Status = domain.StatusDead
	}
	msg := domain.UserMessage(cause)
	rec.ErrorMessage = &msg
	now := e.Clock.Now()
	rec.LastAttemptAt = &now

	if err := e.Store.Update(ctx, rec); err != nil {
		log.Error().Err(err).Str("local_id", rec.LocalID).Msg("could not persist failed attempt")
	}
	if cfg.OnFailure != nil {
		cfg.OnFailure(rec.LocalID, msg)
	}

	text := "delivery attempt failed"
	if rec.Status == domain.StatusDead {
		text = "record exhausted its retry budget"
	}
	log.Warn().
		Str("local_id", rec.LocalID).
		Int("retry_count", rec.RetryCount).
		Err(cause).
		Msg(text)

	return domain.Outcome{
		QueueName:  rec.QueueName,
		LocalID:    rec.LocalID,
		Success:    false,
		Error:      msg,
		StatusCode: status,
	}
}

func (e *Engine) summarize(ctx context.Context, log zerolog.Logger, queue string, outcomes []domain.Outcome) {
	if e.Notifier == nil || len(outcomes) == 0 {
		return
	}
	delivered, failed := Tally(outcomes)
	if err := e.Notifier.QueueSummary(ctx, queue, delivered, failed); err != nil {
		log.Warn().Err(err).Msg("summary notification failed")
	}
}

func (e *Engine) interrupted(ctx context.Context) bool {
	if e.Foreground == nil {
		return false
	}
	fg, err := e.Foreground.Foreground(ctx)
	return err == nil && fg
}

func (e *Engine) requestHeaders(cfg domain.QueueConfig, token string) map[string]string {
	merged := make(map[string]string, len(e.Headers)+len(cfg.Headers)+1)
	if token != "" {
		merged["Authorization"] = "Bearer " + token
	}
	for k, v := range e.Headers {
		merged[k] = v
	}
	for k, v := range cfg.Headers {
		merged[k] = v
	}
	return merged
}

func suffixFor(cfg domain.QueueConfig, rec domain.Record) string {
	if cfg.PathSuffix != nil {
		return cfg.PathSuffix(rec)
	}
	if rec.PathSuffix != nil {
		return *rec.PathSuffix
	}
	return ""
}

// extractServerID decodes a response body into a flat key-value object and
// hands it to the extractor. Anything that is not such an object yields "".
func extractServerID(extract domain.IDExtractor, body []byte) string {
	if extract == nil || len(body) == 0 {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	return extract(fields)
}

// Tally splits outcomes into delivered and failed counts.
func Tally(outcomes []domain.Outcome) (delivered, failed int) {
	for _, o := range outcomes {
		if o.Success {
			delivered++
		} else {
			failed++
		}
	}
	return delivered, failed
}
