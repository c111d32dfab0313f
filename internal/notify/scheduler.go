package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/paragonmech/leadbook/internal/model"
	"github.com/paragonmech/leadbook/internal/store"
)

// dueWindow is how far around "now" a follow-up counts as due: imminent
// items and items up to five minutes overdue both qualify.
const dueWindow = 5 * time.Minute

// Scheduler periodically scans for due follow-ups and raises one reminder
// per follow-up per process lifetime.
type Scheduler struct {
	mu        sync.RWMutex
	sender    Sender
	followups *store.FollowupStore
	subs      *store.PushStore
	tracker   *Tracker
	interval  time.Duration
	now       func() time.Time
	logger    *slog.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewScheduler(sender Sender, followups *store.FollowupStore, subs *store.PushStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sender:    sender,
		followups: followups,
		subs:      subs,
		tracker:   NewTracker(),
		interval:  time.Minute,
		now:       time.Now,
		logger:    logger,
	}
}

// Start begins the due-check loop. It runs until the context is cancelled
// or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		// Check once right away; a reminder already inside the due window
		// should not wait out the first interval.
		s.tick(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for it to exit.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	subs, err := s.subs.ListAll()
	if err != nil {
		s.logger.Error("list subscriptions", "error", err)
		return
	}
	if len(subs) == 0 {
		// No subscription means notification permission was never granted.
		return
	}

	pending, err := s.followups.ListPending()
	if err != nil {
		s.logger.Error("list pending followups", "error", err)
		return
	}

	now := s.now().UTC()
	for _, f := range pending {
		diff := f.ScheduledAt.Sub(now)
		if diff > dueWindow || diff < -dueWindow {
			continue
		}
		if s.tracker.Seen(f.ID) {
			continue
		}
		s.remind(ctx, f, subs)
		s.tracker.Mark(f.ID)
	}
}

func (s *Scheduler) remind(ctx context.Context, f model.Followup, subs []model.PushSubscription) {
	body := fmt.Sprintf("%s (%s)", f.LeadName, f.Company)
	if f.Note != "" {
		body += "\n" + f.Note
	}
	payload := Payload{
		Title:              "Follow-up Reminder",
		Body:               body,
		URL:                "/leads/" + f.LeadID,
		Tag:                f.ID,
		RequireInteraction: true,
	}

	for i := range subs {
		sub := &subs[i]
		err := retry.Do(ctx, retry.WithMaxRetries(2, retry.NewConstant(time.Second)), func(ctx context.Context) error {
			err := s.sender.Send(sub, payload)
			if errors.Is(err, ErrUnavailable) {
				return retry.RetryableError(err)
			}
			return err
		})
		if errors.Is(err, ErrExpired) {
			if err := s.subs.DeleteByEndpoint(sub.Endpoint); err != nil {
				s.logger.Error("prune expired subscription", "endpoint", sub.Endpoint, "error", err)
			}
		} else if err != nil {
			s.logger.Error("send reminder", "followup_id", f.ID, "error", err)
		}
	}
}
