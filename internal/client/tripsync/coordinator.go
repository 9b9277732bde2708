// Package tripsync decides whether the trip list shows the device copy or the
// server copy, and runs the add, sync and delete actions that move between them.
package tripsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/atinyakov/TripSync/internal/client/remote"
	"github.com/atinyakov/TripSync/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrNoUser is returned when an action is attempted without a signed-in user.
	ErrNoUser = errors.New("no user")
	// ErrCancelled is returned when the user declines a delete.
	ErrCancelled = errors.New("cancelled")
	// ErrSaveInProgress is returned by AddTrip while another save is running.
	ErrSaveInProgress = errors.New("save in progress")
)

// Notices shown to the user.
const (
	NoticeSyncFailed   = "Failed to sync"
	NoticeAddFailed    = "Failed to add place"
	NoticeDeleteFailed = "Failed to delete"
)

// LocalStore is the device copy of the trips.
type LocalStore interface {
	QueryByUser(ctx context.Context, userID string) ([]models.TripRecord, error)
	Insert(ctx context.Context, p models.TripRecord) error
	DeleteByID(ctx context.Context, id int64) error
}

// RemoteCollection is the server copy of the trips.
type RemoteCollection interface {
	UpsertBatch(ctx context.Context, userID string, records []models.TripRecord) error
	ListByUser(ctx context.Context, userID string) ([]models.TripRecord, error)
	DeleteByID(ctx context.Context, id int64) error
}

// Notifier shows a short, non-blocking message to the user.
type Notifier interface {
	Notify(msg string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

// ConfirmFunc asks the user a yes/no question and blocks until answered.
type ConfirmFunc func(id int64) bool

// Coordinator owns the visible trip list. All methods are safe for concurrent
// use; they run one at a time.
type Coordinator struct {
	local  LocalStore
	remote RemoteCollection
	ids    IDSource
	notify Notifier
	policy DeletePolicy
	log    *zap.Logger

	saving atomic.Bool

	mu   sync.Mutex
	view View
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Coordinator) { c.log = log }
}

// WithNotifier sets where user notices go.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) { c.notify = n }
}

// WithIDSource replaces the clock-based id source.
func WithIDSource(ids IDSource) Option {
	return func(c *Coordinator) { c.ids = ids }
}

// WithDeletePolicy selects the delete ordering. The default is DeleteLocalFirst.
func WithDeletePolicy(p DeletePolicy) Option {
	return func(c *Coordinator) { c.policy = p }
}

// New returns a Coordinator showing an empty local view.
func New(local LocalStore, rc RemoteCollection, opts ...Option) *Coordinator {
	c := &Coordinator{
		local:  local,
		remote: rc,
		ids:    NewClockIDs(),
		notify: NotifierFunc(func(string) {}),
		policy: DeleteLocalFirst,
		log:    zap.NewNop(),
		view:   View{Source: SourceLocal, Records: []models.TripRecord{}},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns a copy of the current list.
func (c *Coordinator) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.clone()
}

// Focus reloads the list from the device and shows it as local. When added
// reports a successful push, the server's list is shown instead. If that
// fetch fails the local list stays and a notice is sent.
func (c *Coordinator) Focus(ctx context.Context, userID string, added *AddResult) (View, error) {
	if userID == "" {
		return c.View(), ErrNoUser
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.local.QueryByUser(ctx, userID)
	if err != nil {
		return c.view.clone(), fmt.Errorf("load local trips: %w", err)
	}
	c.view = View{Source: SourceLocal, Records: records}

	if added == nil || !added.Pushed {
		return c.view.clone(), nil
	}

	server, err := c.remote.ListByUser(ctx, userID)
	if err != nil {
		c.log.Error("failed to fetch trips after add", zap.String("user_id", userID), zap.Error(err))
		c.notify.Notify(NoticeSyncFailed)
		return c.view.clone(), nil
	}
	c.view = View{Source: SourceRemote, Records: server}
	return c.view.clone(), nil
}

// AddTrip stores a new trip on the device and pushes every device trip of
// userID to the server in one batch. Invalid input returns a
// *models.ValidationError before anything is written. A failed push keeps
// the stored trip and is reported in the result.
func (c *Coordinator) AddTrip(ctx context.Context, userID string, in models.TripInput) (AddResult, error) {
	if userID == "" {
		return AddResult{}, ErrNoUser
	}
	if err := in.Validate(); err != nil {
		return AddResult{}, err
	}
	if !c.saving.CompareAndSwap(false, true) {
		return AddResult{}, ErrSaveInProgress
	}
	defer c.saving.Store(false)

	c.mu.Lock()
	defer c.mu.Unlock()

	record := in.Record(c.ids.NextID(), userID)
	if err := c.local.Insert(ctx, record); err != nil {
		c.log.Error("failed to store trip", zap.Int64("id", record.ID), zap.Error(err))
		c.notify.Notify(NoticeAddFailed)
		return AddResult{}, fmt.Errorf("store trip: %w", err)
	}

	res := AddResult{Record: record}
	res.PushErr = c.push(ctx, userID)
	res.Pushed = res.PushErr == nil
	if !res.Pushed {
		c.log.Error("failed to push trips", zap.String("user_id", userID), zap.Error(res.PushErr))
		c.notify.Notify(NoticeSyncFailed)
	}
	return res, nil
}

func (c *Coordinator) push(ctx context.Context, userID string) error {
	records, err := c.local.QueryByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load local trips: %w", err)
	}
	return c.remote.UpsertBatch(ctx, userID, records)
}

// Sync replaces the list with the server's trips for userID. An empty server
// list is a valid result. On failure the list is left as it was.
func (c *Coordinator) Sync(ctx context.Context, userID string) (View, error) {
	if userID == "" {
		return c.View(), ErrNoUser
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.remote.ListByUser(ctx, userID)
	if err != nil {
		c.log.Error("failed to sync trips", zap.String("user_id", userID), zap.Error(err))
		c.notify.Notify(NoticeSyncFailed)
		return c.view.clone(), fmt.Errorf("sync: %w", err)
	}
	c.view = View{Source: SourceRemote, Records: records}
	return c.view.clone(), nil
}

// Delete removes trip id after confirm agrees. A nil confirm counts as yes.
// The order of the device and server deletes follows the delete policy.
func (c *Coordinator) Delete(ctx context.Context, userID string, id int64, confirm ConfirmFunc) (View, error) {
	if userID == "" {
		return c.View(), ErrNoUser
	}
	if confirm != nil && !confirm(id) {
		return c.View(), ErrCancelled
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	log := c.log.With(zap.String("user_id", userID), zap.Int64("id", id), zap.Stringer("policy", c.policy))

	switch c.policy {
	case DeleteRemoteFirst:
		if err := c.remote.DeleteByID(ctx, id); err != nil && !errors.Is(err, remote.ErrNotFound) {
			log.Error("failed to delete trip on server", zap.Error(err))
			c.notify.Notify(NoticeDeleteFailed)
			return c.view.clone(), fmt.Errorf("delete trip %d: %w", id, err)
		}
		if err := c.local.DeleteByID(ctx, id); err != nil {
			log.Error("failed to delete trip on device", zap.Error(err))
			c.notify.Notify(NoticeDeleteFailed)
			return c.view.clone(), fmt.Errorf("delete trip %d: %w", id, err)
		}
	default:
		if err := c.local.DeleteByID(ctx, id); err != nil {
			log.Error("failed to delete trip on device", zap.Error(err))
			c.notify.Notify(NoticeDeleteFailed)
			return c.view.clone(), fmt.Errorf("delete trip %d: %w", id, err)
		}
		if err := c.remote.DeleteByID(ctx, id); err != nil {
			if errors.Is(err, remote.ErrNotFound) {
				log.Debug("trip was not on server")
			} else {
				log.Warn("device and server diverged: server delete failed", zap.Error(err))
				c.notify.Notify(NoticeDeleteFailed)
			}
		}
	}

	c.view = c.view.without(id)
	return c.view.clone(), nil
}
