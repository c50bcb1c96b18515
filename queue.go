package uplink

import "context"

// Queue is a typed enqueue handle bound to one registered queue, so call
// sites keep compile-time model checking while the registration stays
// untyped.
type Queue[T any] struct {
	client *Client
	name   string
}

// NewQueue binds a typed handle to an already registered queue.
func NewQueue[T any](c *Client, name string) (*Queue[T], error) {
	if _, err := c.queueConfig(name); err != nil {
		return nil, err
	}
	return &Queue[T]{client: c, name: name}, nil
}

// Name returns the bound queue name.
func (q *Queue[T]) Name() string { return q.name }

// Enqueue stores one typed model through the queue's serializer.
func (q *Queue[T]) Enqueue(ctx context.Context, model T, opts ...EnqueueOption) (string, error) {
	return q.client.Enqueue(ctx, q.name, model, opts...)
}

// Pending lists the records a cycle would attempt next, oldest first.
func (q *Queue[T]) Pending(ctx context.Context) ([]Record, error) {
	return q.client.ListPending(ctx, q.name)
}

// All lists every stored record of the queue.
func (q *Queue[T]) All(ctx context.Context) ([]Record, error) {
	return q.client.ListAll(ctx, q.name)
}

// Remove discards one record without delivering it.
func (q *Queue[T]) Remove(ctx context.Context, localID string) error {
	return q.client.Remove(ctx, q.name, localID)
}

// Requeue puts a dead or stuck record back into rotation.
func (q *Queue[T]) Requeue(ctx context.Context, localID string) error {
	return q.client.Requeue(ctx, q.name, localID)
}
