// Package simulator fabricates inbound mail activity. Every effect goes
// through the store's public mutation operations, so from the store's
// point of view a simulated sync is indistinguishable from a user action.
package simulator

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/maildeck/server/internal/models"
	"github.com/maildeck/server/internal/store"
)

// DefaultInterval is the tick interval used when Start is given zero.
const DefaultInterval = 30 * time.Second

var mockSenders = []models.Participant{
	{Name: "David Lee", Email: "david@techcompany.com"},
	{Name: "Sofia Martinez", Email: "sofia.m@agency.co"},
	{Name: "Zoom", Email: "no-reply@zoom.us"},
	{Name: "Amazon", Email: "shipment@amazon.com"},
}

var subjectTemplates = []string{
	"🎯 Quick question about the project",
	"Meeting confirmed for tomorrow",
	"Your package has been delivered",
	"Action required: Please review",
	"🎉 You have been invited!",
	"Weekly team sync notes",
	"FYI: System maintenance tonight",
}

var bodyTemplates = []string{
	"Just wanted to follow up on our previous conversation. Let me know if you have any questions!",
	"Your meeting has been confirmed for tomorrow at 2pm. Looking forward to it!",
	"Your package has been delivered to your front door. Track your order for more details.",
	"Please review the attached document and provide your feedback by end of week.",
	"You have been invited to join our upcoming event. Please RSVP to confirm your attendance.",
	"Here are the notes from the team sync meeting. Action items are highlighted.",
	"Scheduled system maintenance will occur tonight from 11pm to 2am. Service may be briefly interrupted.",
}

// DelayFunc waits for the given duration or until the context is done.
type DelayFunc func(ctx context.Context, d time.Duration) error

// Simulator drives store mutations on a timer to emulate inbound mail
// and sync status changes. Randomness and delays are injectable so tests
// can force each outcome branch deterministically.
type Simulator struct {
	store  *store.Store
	rng    *rand.Rand
	delay  DelayFunc
	notify func(accountID string)

	// tickMu guarantees ticks never overlap, whether timer- or
	// RunOnce-driven.
	tickMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithRand replaces the outcome-drawing random source.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulator) { s.rng = rng }
}

// WithDelay replaces the per-account artificial latency.
func WithDelay(delay DelayFunc) Option {
	return func(s *Simulator) { s.delay = delay }
}

// WithNotify sets the callback fired once per account per tick, after
// that account's status has settled.
func WithNotify(notify func(accountID string)) Option {
	return func(s *Simulator) { s.notify = notify }
}

// New creates a simulator over the given store.
func New(st *store.Store, opts ...Option) *Simulator {
	s := &Simulator{
		store: st,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		delay: sleepDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func sleepDelay(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Start begins ticking at the given interval (DefaultInterval if zero),
// with one tick fired immediately. A previous run is stopped first.
func (s *Simulator) Start(interval time.Duration) {
	s.Stop()

	if interval <= 0 {
		interval = DefaultInterval
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go func() {
		defer close(done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		_ = s.RunOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = s.RunOnce(ctx)
			}
		}
	}()
}

// Stop cancels the pending tick and waits for the timer goroutine to
// exit. Safe to call when not running.
func (s *Simulator) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// RunOnce performs a single synchronous tick over every known account.
// It is the deterministic driver used by tests and the /sync/run host
// endpoint.
func (s *Simulator) RunOnce(ctx context.Context) error {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	for _, account := range s.store.Accounts() {
		if err := s.syncAccount(ctx, account); err != nil {
			return fmt.Errorf("sync of account %s failed: %w", account.ID, err)
		}
		if s.notify != nil {
			s.notify(account.ID)
		}
	}
	return nil
}

func (s *Simulator) syncAccount(ctx context.Context, account models.Account) error {
	now := time.Now().UTC()
	if err := s.store.UpdateSyncStatus(ctx, models.SyncStatus{
		AccountID:    account.ID,
		IsSyncing:    true,
		LastSyncTime: &now,
	}); err != nil {
		return err
	}

	if err := s.delay(ctx, time.Duration(1000+s.rng.Intn(2000))*time.Millisecond); err != nil {
		return err
	}

	settled := time.Now().UTC()
	status := models.SyncStatus{AccountID: account.ID, LastSyncTime: &settled}

	switch draw := s.rng.Float64(); {
	case draw < 0.1:
		if _, err := s.store.SetAccountReauth(ctx, account.ID, true); err != nil {
			return err
		}
		status.Error = "Authentication required"
	case draw < 0.5:
		if err := s.deliverMessage(ctx, account); err != nil {
			return err
		}
	}

	return s.store.UpdateSyncStatus(ctx, status)
}

// deliverMessage synthesizes a new thread with one unread message and
// files it into the account's inbox via the standard add operations. An
// account without an inbox folder receives nothing.
func (s *Simulator) deliverMessage(ctx context.Context, account models.Account) error {
	var inbox *models.Folder
	for _, folder := range s.store.Folders(account.ID) {
		if folder.Type == models.FolderInbox {
			f := folder
			inbox = &f
			break
		}
	}
	if inbox == nil {
		return nil
	}

	threadID := "thread_sim_" + uuid.NewString()
	messageID := "msg_sim_" + uuid.NewString()

	sender := mockSenders[s.rng.Intn(len(mockSenders))]
	subject := subjectTemplates[s.rng.Intn(len(subjectTemplates))]
	body := bodyTemplates[s.rng.Intn(len(bodyTemplates))]
	recipient := models.Participant{Name: account.Name, Email: account.Email}
	now := time.Now().UTC()

	thread := models.Thread{
		ID:           threadID,
		Subject:      subject,
		Participants: []models.Participant{sender, recipient},
		MessageIDs:   []string{messageID},
		FolderIDs:    models.NewIDSet(inbox.ID),
		LastActivity: now,
		Snippet:      snippet(body),
	}
	message := models.Message{
		ID:       messageID,
		ThreadID: threadID,
		From:     sender,
		To:       []models.Participant{recipient},
		Subject:  subject,
		Body:     body,
		Date:     now,
	}

	if err := s.store.AddThread(ctx, thread); err != nil {
		return err
	}
	return s.store.AddMessage(ctx, message)
}

func snippet(body string) string {
	runes := []rune(body)
	if len(runes) > 80 {
		runes = runes[:80]
	}
	return string(runes) + "..."
}
