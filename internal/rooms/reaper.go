package rooms

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/boggle/apps/go-server/internal/game"
	"github.com/robalobadob/boggle/apps/go-server/internal/store"
)

// Cleanup deletes every room created more than the TTL ago and reports how
// many went. It runs before each CreateRoom and on the Reaper's ticker.
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	all, err := s.store.Scan(ctx)
	if err != nil {
		return 0, game.Internal(err, "Could not list rooms")
	}

	now := s.now()
	removed := 0
	for _, r := range all {
		if !r.Expired(now, s.ttl) {
			continue
		}
		gone, err := s.expire(ctx, r.ID, now)
		if err != nil {
			return removed, game.Internal(err, "Could not delete room %s", r.ID)
		}
		if gone {
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Int("scanned", len(all)).Msg("expired rooms reaped")
	}
	return removed, nil
}

// expire deletes id under its room lock, re-checking expiry on fresh state.
// It reports whether this call removed the room.
func (s *Service) expire(ctx context.Context, id string, now time.Time) (bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	r, err := s.store.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !r.Expired(now, s.ttl) {
		return false, nil
	}
	err = s.store.Delete(ctx, id, r.Version)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrConflict) {
		// Changed by another process; the next sweep sees it again.
		return false, nil
	}
	return err == nil, err
}

// Reaper calls Cleanup on a fixed interval.
type Reaper struct {
	svc      *Service
	interval time.Duration
}

// NewReaper returns a Reaper for svc. A non-positive interval disables it.
func NewReaper(svc *Service, interval time.Duration) *Reaper {
	return &Reaper{svc: svc, interval: interval}
}

// Run blocks until ctx is done.
func (r *Reaper) Run(ctx context.Context) {
	if r.interval <= 0 {
		log.Info().Msg("reaper disabled")
		return
	}
	log.Info().Dur("interval", r.interval).Msg("reaper started")

	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reaper stopped")
			return
		case <-t.C:
			if _, err := r.svc.Cleanup(ctx); err != nil && ctx.Err() == nil {
				log.Warn().Err(err).Msg("reaper cleanup")
			}
		}
	}
}
