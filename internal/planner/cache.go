// Package planner holds the client-side view of the destination collection:
// an ordered, id-keyed cache mutated optimistically and reconciled against
// the remote authority, with rollback on failure.
package planner

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/nfrund/voyage/internal/domain"
	"github.com/nfrund/voyage/internal/gate"
	"github.com/nfrund/voyage/internal/gateway"
	"github.com/nfrund/voyage/internal/pubsub"
	"github.com/nfrund/voyage/internal/session"
)

// Remote is the slice of the remote API the cache needs. *gateway.Client
// satisfies it.
type Remote interface {
	ListDestinations(ctx context.Context) ([]domain.Destination, error)
	CreateDestination(ctx context.Context, req gateway.CreateDestinationRequest) (domain.Destination, error)
	UpdateDestination(ctx context.Context, id string, patch domain.DestinationPatch) (domain.Destination, error)
	DeleteDestination(ctx context.Context, id string) error
}

// Session is the slice of the session manager the cache needs: the gate
// predicate input and the forced-logout side effect.
type Session interface {
	Snapshot() session.Snapshot
	Logout(ctx context.Context)
}

type opKind int

const (
	opUpdate opKind = iota
	opRemove
)

// pendingOp tracks one in-flight optimistic mutation. Each op carries its
// own pre-image: rollback restores the immediately-preceding snapshot, not a
// global baseline. The pre-images of ops issued later are repaired whenever
// an earlier op rolls back.
type pendingOp struct {
	kind     opKind
	patch    domain.DestinationPatch
	preimage domain.Destination
	index    int
	gen      uint64
}

// Cache owns the destination collection for the current session. External
// components only ever receive copies; all mutations go through Refresh,
// Create, Update and Remove.
type Cache struct {
	mu         sync.Mutex
	items      []domain.Destination
	pending    map[string][]*pendingOp
	generation uint64

	// turns serializes network round trips per destination id in the
	// order the optimistic mutations were applied, so resolutions for the
	// same record arrive in issue order. Each entry is the completion
	// signal of the most recently enqueued op for that id.
	turns map[string]chan struct{}

	remote Remote
	sess   Session
	pub    pubsub.Publisher
}

// NewCache creates an empty cache bound to the given session and remote.
func NewCache(remote Remote, sess Session, pub pubsub.Publisher) *Cache {
	return &Cache{
		pending: make(map[string][]*pendingOp),
		turns:   make(map[string]chan struct{}),
		remote:  remote,
		sess:    sess,
		pub:     pub,
	}
}

// Snapshot returns a copy of the collection in its current order.
func (c *Cache) Snapshot() []domain.Destination {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

// Get returns a copy of the record with the given id.
func (c *Cache) Get(id string) (domain.Destination, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if idx := c.indexLocked(id); idx >= 0 {
		return c.items[idx], true
	}
	return domain.Destination{}, false
}

// Generation returns the current collection generation. It advances on every
// full refresh and on clear, and is used to discard late-arriving effects of
// superseded mutations.
func (c *Cache) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// Refresh fetches the full collection and replaces the local one atomically;
// readers never observe a partially-replaced collection. An authorization
// rejection forces a logout (and thereby a cache clear); any other failure
// retains the previous collection.
func (c *Cache) Refresh(ctx context.Context) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	list, err := c.remote.ListDestinations(ctx)
	if err != nil {
		if domain.IsAuthFault(err) {
			c.forceLogout(ctx)
		}
		return err
	}

	c.mu.Lock()
	c.items = slices.Clone(list)
	c.pending = make(map[string][]*pendingOp)
	c.generation++
	c.mu.Unlock()

	c.publish(ctx, "refresh")
	return nil
}

// Create persists a new destination. There is no optimistic insert here: the
// record has no id until the remote authority assigns one, so the call
// blocks until the persisted record comes back and is appended.
func (c *Cache) Create(ctx context.Context, draft domain.DestinationDraft) (domain.Destination, error) {
	if err := c.requireAuth(); err != nil {
		return domain.Destination{}, err
	}
	if err := draft.Validate(); err != nil {
		return domain.Destination{}, err
	}

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	created, err := c.remote.CreateDestination(ctx, gateway.CreateDestinationRequest{
		Name:        draft.Name,
		PlannedDate: draft.PlannedDate,
		// The total budget is the sum of the provided categories;
		// categories the caller left out count as zero.
		TotalBudget: draft.Expenses.Total(),
		Expenses:    draft.Expenses,
	})
	if err != nil {
		if domain.IsAuthFault(err) {
			c.forceLogout(ctx)
		}
		return domain.Destination{}, err
	}

	c.mu.Lock()
	stale := gen != c.generation
	if !stale && c.indexLocked(created.ID) < 0 {
		c.items = append(c.items, created)
	}
	c.mu.Unlock()

	if !stale {
		c.publish(ctx, "create")
	}
	return created, nil
}

// Update merges the patch into the local record synchronously, before the
// network round trip completes. On failure the record reverts to the
// snapshot taken immediately before this update was issued; concurrent
// updates to other records are unaffected, and later pending patches on the
// same record are re-applied on top of the restored snapshot.
func (c *Cache) Update(ctx context.Context, id string, patch domain.DestinationPatch) error {
	if err := c.requireAuth(); err != nil {
		return err
	}
	if patch.IsZero() {
		return nil
	}

	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return domain.WrapFault(domain.FaultValidation, "Unknown destination.", domain.ErrNotFound)
	}
	entry := &pendingOp{
		kind:     opUpdate,
		patch:    patch,
		preimage: c.items[idx],
		gen:      c.generation,
	}
	c.items[idx] = patch.Apply(c.items[idx])
	c.pending[id] = append(c.pending[id], entry)
	turn := c.takeTurnLocked(id)
	c.mu.Unlock()

	c.publish(ctx, "update")

	turn.wait()
	updated, err := c.remote.UpdateDestination(ctx, id, patch)
	stale := c.resolveUpdate(ctx, id, entry, updated, err)
	c.finishTurn(id, turn)

	// A stale resolution belongs to a superseded collection; its
	// authorization rejection says nothing about the current session.
	if err != nil && !stale && domain.IsAuthFault(err) {
		c.forceLogout(ctx)
	}
	return err
}

// Remove takes the record out of the collection immediately. On failure it
// is reinserted at its original position.
func (c *Cache) Remove(ctx context.Context, id string) error {
	if err := c.requireAuth(); err != nil {
		return err
	}

	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return domain.WrapFault(domain.FaultValidation, "Unknown destination.", domain.ErrNotFound)
	}
	entry := &pendingOp{
		kind:     opRemove,
		preimage: c.items[idx],
		index:    idx,
		gen:      c.generation,
	}
	c.items = slices.Delete(c.items, idx, idx+1)
	c.pending[id] = append(c.pending[id], entry)
	turn := c.takeTurnLocked(id)
	c.mu.Unlock()

	c.publish(ctx, "remove")

	turn.wait()
	err := c.remote.DeleteDestination(ctx, id)
	stale := c.resolveRemove(ctx, id, entry, err)
	c.finishTurn(id, turn)

	if err != nil && !stale && domain.IsAuthFault(err) {
		c.forceLogout(ctx)
	}
	return err
}

// Clear empties the collection and advances the generation so any late
// resolutions of in-flight mutations are discarded instead of mutating a
// cleared collection.
func (c *Cache) Clear(ctx context.Context) {
	c.mu.Lock()
	c.items = nil
	c.pending = make(map[string][]*pendingOp)
	c.generation++
	c.mu.Unlock()

	c.publish(ctx, "clear")
}

// HandleSessionChange clears the cache whenever the session leaves the
// authenticated state. It is registered as a session listener by the
// composition root.
func (c *Cache) HandleSessionChange(snap session.Snapshot) {
	if snap.State != session.StateAuthenticated {
		c.Clear(context.Background())
	}
}

func (c *Cache) requireAuth() error {
	if !gate.Allow(c.sess.Snapshot()) {
		return domain.WrapFault(domain.FaultAuth, "Please sign in first.", domain.ErrNotAuthenticated)
	}
	return nil
}

// forceLogout handles an authorization rejection from the remote authority:
// the session returns to anonymous and the collection is cleared.
func (c *Cache) forceLogout(ctx context.Context) {
	slog.Info("Remote rejected the credential, signing out")
	c.Clear(ctx)
	c.sess.Logout(ctx)
}

func (c *Cache) indexLocked(id string) int {
	return slices.IndexFunc(c.items, func(d domain.Destination) bool {
		return d.ID == id
	})
}

// turn is one op's slot in the per-id round-trip queue. Taking the turn under
// c.mu, in the same critical section as the optimistic apply, makes network
// issue order identical to pending-queue order; an op only starts its round
// trip once its predecessor has resolved.
type turn struct {
	prev <-chan struct{}
	self chan struct{}
}

func (t *turn) wait() {
	if t.prev != nil {
		<-t.prev
	}
}

func (c *Cache) takeTurnLocked(id string) *turn {
	t := &turn{prev: c.turns[id], self: make(chan struct{})}
	c.turns[id] = t.self
	return t
}

func (c *Cache) finishTurn(id string, t *turn) {
	close(t.self)
	c.mu.Lock()
	if c.turns[id] == t.self {
		delete(c.turns, id)
	}
	c.mu.Unlock()
}

// dropPendingLocked removes the entry from the id's queue and returns the
// ops issued after it, in issue order.
func (c *Cache) dropPendingLocked(id string, entry *pendingOp) []*pendingOp {
	queue := c.pending[id]
	pos := slices.Index(queue, entry)
	if pos < 0 {
		return nil
	}
	later := slices.Clone(queue[pos+1:])
	c.pending[id] = slices.Delete(queue, pos, pos+1)
	if len(c.pending[id]) == 0 {
		delete(c.pending, id)
	}
	return later
}

// resolveUpdate settles one update's round trip. It reports whether the
// resolution was stale, in which case every local effect was discarded.
func (c *Cache) resolveUpdate(ctx context.Context, id string, entry *pendingOp, server domain.Destination, callErr error) bool {
	c.mu.Lock()

	if entry.gen != c.generation {
		// The collection was refreshed or cleared while this mutation
		// was in flight; its late effects must not resurrect stale data.
		c.mu.Unlock()
		slog.Debug("Discarding stale update resolution", "id", id, "issued_gen", entry.gen)
		return true
	}

	later := c.dropPendingLocked(id, entry)

	if callErr == nil {
		// Local state already reflects the patch. Once nothing else is
		// pending for this record we trust the server's representation
		// to resolve any server-side derived fields.
		if len(later) == 0 {
			if idx := c.indexLocked(id); idx >= 0 {
				c.items[idx] = server
			}
		}
		c.mu.Unlock()
		return false
	}

	// Rollback: restore this op's own pre-image, then replay the patches
	// of ops issued after it and repair their pre-images, so a later
	// rollback also lands on the right snapshot.
	value := entry.preimage
	present := true
	for _, p := range later {
		p.preimage = value
		if p.kind == opUpdate {
			value = p.patch.Apply(value)
		} else {
			present = false
		}
	}
	if present {
		if idx := c.indexLocked(id); idx >= 0 {
			c.items[idx] = value
		}
	}
	c.mu.Unlock()

	c.publish(ctx, "rollback")
	return false
}

// resolveRemove settles one removal's round trip. It reports whether the
// resolution was stale, in which case every local effect was discarded.
func (c *Cache) resolveRemove(ctx context.Context, id string, entry *pendingOp, callErr error) bool {
	c.mu.Lock()

	if entry.gen != c.generation {
		c.mu.Unlock()
		slog.Debug("Discarding stale remove resolution", "id", id, "issued_gen", entry.gen)
		return true
	}

	c.dropPendingLocked(id, entry)

	if callErr == nil {
		c.mu.Unlock()
		return false
	}

	// Reinsert at the original position, clamped in case the collection
	// shrank meanwhile.
	pos := min(entry.index, len(c.items))
	c.items = slices.Insert(c.items, pos, entry.preimage)
	c.mu.Unlock()

	c.publish(ctx, "rollback")
	return false
}

func (c *Cache) publish(ctx context.Context, reason string) {
	if c.pub == nil {
		return
	}

	c.mu.Lock()
	payload := Changed{
		Reason:     reason,
		Generation: c.generation,
		Stats:      statsOf(c.items),
	}
	c.mu.Unlock()

	if err := pubsub.Publish(ctx, c.pub, ChangedEvent, payload); err != nil {
		slog.Error("Failed to publish collection change", "reason", reason, "error", err)
	}
}
