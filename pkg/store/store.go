// Package store holds the in-memory, optimistically-updated mirror of remote
// container state and is the single path through which callers mutate it.
//
// Mutations fall into two classes. Gateway-first operations (create, update,
// delete, move, share) call the gateway and only touch the mirror from the
// authoritative result; on failure the mirror keeps its pre-call state and the
// error surfaces to the caller. Optimistic-first operations (reorder, click
// tracking) update the mirror immediately; a failed reorder resynchronizes via
// a full refetch, a failed click track is swallowed.
//
// The public mutation API is meant to be driven serially by a UI loop. The
// store does not queue or serialize racing mutations against the same
// container; the mutex only keeps the mirror coherent against deferred
// soft-delete timers and background completions, which run on other
// goroutines.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"linkvault/pkg/gateway"
	"linkvault/pkg/logger"
	"linkvault/pkg/models"
	"linkvault/pkg/preview"

	"github.com/google/uuid"
)

// DefaultGraceWindow is how long a soft-deleted link can be undone before the
// gateway delete fires.
const DefaultGraceWindow = 5 * time.Second

type pendingDelete struct {
	containerID uuid.UUID
	link        models.Link
	index       int
	timer       *time.Timer
}

type Store struct {
	collections gateway.RemoteCollectionGateway
	sharing     gateway.SharingGateway
	shareLinks  gateway.ShareLinkGateway
	users       gateway.UserDirectory
	resolver    *preview.Resolver

	graceWindow time.Duration

	mu         sync.Mutex
	userID     uuid.UUID
	containers []models.Container
	loading    bool
	lastErr    string
	// generation stamps the mirror; a resync started before a newer local
	// mutation discards its result instead of clobbering it.
	generation uint64
	pending    map[string]*pendingDelete
	onChange   []func()
}

// Option configures a Store.
type Option func(*Store)

// WithGraceWindow overrides the soft-delete undo window.
func WithGraceWindow(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.graceWindow = d
		}
	}
}

// WithResolver enables background favicon refinement for newly added links.
func WithResolver(r *preview.Resolver) Option {
	return func(s *Store) { s.resolver = r }
}

func New(
	collections gateway.RemoteCollectionGateway,
	sharing gateway.SharingGateway,
	shareLinks gateway.ShareLinkGateway,
	users gateway.UserDirectory,
	opts ...Option,
) *Store {
	s := &Store{
		collections: collections,
		sharing:     sharing,
		shareLinks:  shareLinks,
		users:       users,
		graceWindow: DefaultGraceWindow,
		pending:     make(map[string]*pendingDelete),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetUser switches the active user identity and refetches their containers.
func (s *Store) SetUser(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	s.userID = userID
	s.containers = nil
	s.generation++
	for id, pd := range s.pending {
		pd.timer.Stop()
		delete(s.pending, id)
	}
	s.mu.Unlock()
	return s.Refresh(ctx)
}

// UserID returns the active user identity.
func (s *Store) UserID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Refresh refetches the full container list from the gateway and replaces the
// mirror with it.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	userID := s.userID
	gen := s.generation
	s.loading = true
	s.mu.Unlock()
	s.notify()

	list, err := s.collections.ListForUser(ctx, userID)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.lastErr = userMessage(err)
		s.mu.Unlock()
		s.notify()
		return err
	}
	if s.generation != gen {
		// A local mutation landed while the fetch was in flight; its own
		// resync will settle the mirror.
		s.mu.Unlock()
		s.notify()
		return nil
	}
	s.hidePendingLocked(list)
	s.containers = list
	s.sortLocked()
	s.mu.Unlock()
	s.notify()
	return nil
}

// resync refetches in the background after a failed optimistic mutation,
// discarding the result if it lost the race to a newer local change.
func (s *Store) resync(ctx context.Context) {
	s.mu.Lock()
	userID := s.userID
	gen := s.generation
	s.mu.Unlock()

	list, err := s.collections.ListForUser(ctx, userID)
	if err != nil {
		logger.LogError(err, "resync after failed mutation")
		return
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	s.hidePendingLocked(list)
	s.containers = list
	s.sortLocked()
	s.mu.Unlock()
	s.notify()
}

// hidePendingLocked strips soft-deleted links from a freshly fetched list.
// The server still holds them until their grace window elapses, so installing
// a fetch verbatim would resurrect links the user just deleted.
func (s *Store) hidePendingLocked(list []models.Container) {
	if len(s.pending) == 0 {
		return
	}
	for i := range list {
		kept := make([]models.Link, 0, len(list[i].Links))
		for _, l := range list[i].Links {
			if _, hidden := s.pending[l.ID]; !hidden {
				kept = append(kept, l)
			}
		}
		list[i].Links = kept
	}
}

// Containers returns a copy of the mirror in display order. Soft-deleted
// links are already hidden from it.
func (s *Store) Containers() []models.Container {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Container, len(s.containers))
	copy(out, s.containers)
	return out
}

// Container returns a copy of one container from the mirror.
func (s *Store) Container(id uuid.UUID) (models.Container, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 {
		return models.Container{}, false
	}
	return s.containers[i], true
}

// Loading reports whether a full refetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// GraceWindow returns how long a deleted link stays undoable.
func (s *Store) GraceWindow() time.Duration {
	return s.graceWindow
}

// Err returns the last human-readable failure message, for passive display.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// ClearErr resets the displayed failure message.
func (s *Store) ClearErr() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}

// Subscribe registers a callback fired after every mirror change. This is the
// explicit change channel callers use instead of polling.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.onChange = append(s.onChange, fn)
	s.mu.Unlock()
}

// Close flushes pending soft deletes, firing their gateway calls immediately
// so that exiting the process does not drop them.
func (s *Store) Close() {
	s.mu.Lock()
	flush := make([]*pendingDelete, 0, len(s.pending))
	for id, pd := range s.pending {
		if pd.timer.Stop() {
			flush = append(flush, pd)
		}
		delete(s.pending, id)
	}
	s.mu.Unlock()

	for _, pd := range flush {
		if err := s.collections.DeleteLink(context.Background(), pd.containerID, pd.link.ID); err != nil {
			logger.LogError(err, "flush pending delete of link %s", pd.link.ID)
		}
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.onChange))
	copy(subs, s.onChange)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// fail records a human-readable message for display and passes the error
// through to the caller.
func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.lastErr = userMessage(err)
	s.mu.Unlock()
	s.notify()
	return err
}

func userMessage(err error) string {
	var ge *gateway.Error
	if errors.As(err, &ge) {
		return ge.UserMessage()
	}
	return err.Error()
}

func (s *Store) indexLocked(id uuid.UUID) int {
	for i := range s.containers {
		if s.containers[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) sortLocked() {
	sort.SliceStable(s.containers, func(i, j int) bool {
		return s.containers[i].Order < s.containers[j].Order
	})
}

func (s *Store) bumpLocked() {
	s.generation++
}

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}
