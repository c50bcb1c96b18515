package guard

import (
	"context"
	"errors"
	"time"

	"uplink/internal/domain"
	"uplink/internal/store"
)

// DefaultForegroundMaxAge bounds how long a foreground mark stays valid.
// The flag is eventually consistent between contexts that share no memory;
// if the foreground process dies without clearing it, background delivery
// must not be blocked forever.
const DefaultForegroundMaxAge = 10 * time.Minute

// FlagReader is the slice of the store the signal needs.
type FlagReader interface {
	GetFlag(ctx context.Context, name string) (store.Flag, error)
}

// StoreForeground reads the shared foreground flag written by the
// interactive context. A missing flag or a mark older than MaxAge counts as
// background.
type StoreForeground struct {
	Flags  FlagReader
	MaxAge time.Duration

	now func() time.Time // test seam
}

var _ ForegroundSignal = (*StoreForeground)(nil)

// NewStoreForeground builds the signal with the default staleness bound.
func NewStoreForeground(flags FlagReader) *StoreForeground {
	return &StoreForeground{Flags: flags, MaxAge: DefaultForegroundMaxAge}
}

func (s *StoreForeground) Foreground(ctx context.Context) (bool, error) {
	flag, err := s.Flags.GetFlag(ctx, store.FlagForeground)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if flag.Value != "true" {
		return false, nil
	}
	if s.MaxAge > 0 && s.clock().Sub(flag.UpdatedAt) > s.MaxAge {
		return false, nil
	}
	return true, nil
}

func (s *StoreForeground) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
