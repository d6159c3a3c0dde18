package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"tokodash/internal/models"
	"tokodash/internal/repositories"
	logx "tokodash/pkg/logger"

	"github.com/google/uuid"
)

// EmptySectionMessage is shown for a moderation list with no items.
const EmptySectionMessage = "Nothing here yet."

var ErrUnknownKind = errors.New("unknown moderation list")

// DecisionPublisher forwards resolved items to downstream consumers.
type DecisionPublisher interface {
	PublishDecision(event models.DecisionEvent) error
}

// Section is one titled list of the moderation dashboard.
type Section struct {
	Kind         models.ItemKind
	Title        string
	Items        []models.PendingItem
	EmptyMessage string
}

// Heading renders the title with the item count.
func (s Section) Heading() string {
	return fmt.Sprintf("%s (%d)", s.Title, len(s.Items))
}

// Empty reports whether the section has nothing to moderate.
func (s Section) Empty() bool {
	return len(s.Items) == 0
}

// ModerationService holds the four pending lists of the moderation queue in
// memory. Resolving an item only removes it locally.
type ModerationService struct {
	source    repositories.PendingItemSource
	publisher DecisionPublisher
	delay     time.Duration
	now       func() time.Time

	mu        sync.RWMutex
	items     repositories.PendingItems
	loading   bool
	activated bool
	loadErr   error
	done      chan struct{}
}

// NewModerationService creates a queue populated from source after delay.
// publisher may be nil.
func NewModerationService(source repositories.PendingItemSource, publisher DecisionPublisher, delay time.Duration) *ModerationService {
	return &ModerationService{
		source:    source,
		publisher: publisher,
		delay:     delay,
		now:       time.Now,
	}
}

// Activate starts populating the lists in the background. It is a no-op while
// a load is running and re-populates once the previous load finished.
// The returned channel closes when the load completes.
func (s *ModerationService) Activate(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		return s.done
	}
	s.loading = true
	s.activated = true
	s.done = make(chan struct{})

	go s.populate(ctx, s.done)
	return s.done
}

// EnsureActivated activates the queue on first use only.
func (s *ModerationService) EnsureActivated(ctx context.Context) {
	s.mu.RLock()
	activated := s.activated
	s.mu.RUnlock()
	if !activated {
		s.Activate(ctx)
	}
}

func (s *ModerationService) populate(ctx context.Context, done chan struct{}) {
	defer close(done)

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		}
	}

	var (
		items *repositories.PendingItems
		err   = ctx.Err()
	)
	if err == nil {
		items, err = s.source.LoadPending(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.loadErr = err
	if err != nil {
		s.items = repositories.PendingItems{}
		logx.Error().Err(err).Msg("failed to populate moderation queue")
		return
	}
	s.items = *items
	logx.Info().
		Int("comments", len(items.Comments)).
		Int("corrections", len(items.Corrections)).
		Int("orders", len(items.Orders)).
		Int("wishlist", len(items.Wishlist)).
		Msg("moderation queue populated")
}

// Loading reports whether the initial population is still running.
func (s *ModerationService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// LoadError returns the error of the last population attempt, if any.
func (s *ModerationService) LoadError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadErr
}

// Sections returns the lists in dashboard order.
func (s *ModerationService) Sections() []Section {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return []Section{
		newSection(models.KindComments, "Pending Comments", s.items.Comments),
		newSection(models.KindCorrections, "Pending Corrections", s.items.Corrections),
		newSection(models.KindOrders, "Pending Orders", s.items.Orders),
		newSection(models.KindWishlist, "Wishlist Items", s.items.Wishlist),
	}
}

func newSection[T models.PendingItem](kind models.ItemKind, title string, items []T) Section {
	out := make([]models.PendingItem, len(items))
	for i, item := range items {
		out[i] = item
	}
	return Section{Kind: kind, Title: title, Items: out, EmptyMessage: EmptySectionMessage}
}

// Resolve removes the item with id from the list named by kind and reports
// whether one was removed. Approve and reject have the same local effect.
func (s *ModerationService) Resolve(ctx context.Context, kind models.ItemKind, id int, decision models.Decision, actor string) (bool, error) {
	s.mu.Lock()
	var removed bool
	switch kind {
	case models.KindComments:
		s.items.Comments, removed = removeByID(s.items.Comments, id)
	case models.KindCorrections:
		s.items.Corrections, removed = removeByID(s.items.Corrections, id)
	case models.KindOrders:
		s.items.Orders, removed = removeByID(s.items.Orders, id)
	case models.KindWishlist:
		s.items.Wishlist, removed = removeByID(s.items.Wishlist, id)
	default:
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	s.mu.Unlock()

	if !removed {
		logx.Debug().Str("kind", string(kind)).Int("item_id", id).Msg("resolve: item not in queue")
		return false, nil
	}

	logx.Info().Ctx(ctx).Str("kind", string(kind)).Int("item_id", id).Str("decision", string(decision)).Str("actor", actor).Msg("moderation item resolved")
	s.publish(kind, id, decision, actor)
	return true, nil
}

func (s *ModerationService) publish(kind models.ItemKind, id int, decision models.Decision, actor string) {
	if s.publisher == nil {
		return
	}
	event := models.DecisionEvent{
		ID:        uuid.NewString(),
		Kind:      kind,
		ItemID:    id,
		Decision:  decision,
		DecidedBy: actor,
		DecidedAt: s.now().UTC(),
	}
	if err := s.publisher.PublishDecision(event); err != nil {
		logx.Warn().Err(err).Str("event_id", event.ID).Msg("failed to publish decision event")
	}
}

// removeByID filters out every element whose identifier equals id.
func removeByID[T models.PendingItem](items []T, id int) ([]T, bool) {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if item.ItemID() != id {
			kept = append(kept, item)
		}
	}
	return kept, len(kept) != len(items)
}
