// Package memory provides an in-memory store for tests and single-process
// deployments.
package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/sasha-s/go-deadlock"
	"lukechampine.com/uint128"

	"github.com/xraph/curve"
	"github.com/xraph/curve/holding"
	"github.com/xraph/curve/owner"
	"github.com/xraph/curve/store"
	"github.com/xraph/curve/types"
)

var _ store.Store = (*Store)(nil)

type holdingKey struct {
	holder string
	owner  string
}

// Store keeps all state in maps guarded by one lock. Every method takes
// the lock for its whole duration, so each mutation is atomic.
type Store struct {
	mu deadlock.RWMutex

	admin    string
	allowed  map[string]struct{}
	owners   map[string]*owner.Owner
	order    []string
	holdings map[holdingKey]*holding.Holding
	byOwner  map[string][]string
	closed   bool
}

// New returns an empty store.
func New() *Store {
	return &Store{
		allowed:  make(map[string]struct{}),
		owners:   make(map[string]*owner.Owner),
		holdings: make(map[holdingKey]*holding.Holding),
		byOwner:  make(map[string][]string),
	}
}

// ──────────────────────────────────────────────────
// Administrator and allow-list
// ──────────────────────────────────────────────────

// GetAdministrator returns the administrator, or ErrNotInitialized before SetAdministrator.
func (s *Store) GetAdministrator(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", curve.ErrStoreClosed
	}
	if s.admin == "" {
		return "", curve.ErrNotInitialized
	}
	return s.admin, nil
}

// SetAdministrator records the administrator once; later calls return ErrAlreadyInitialized.
func (s *Store) SetAdministrator(_ context.Context, admin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return curve.ErrStoreClosed
	}
	if s.admin != "" {
		return curve.ErrAlreadyInitialized
	}
	s.admin = admin
	return nil
}

// Allow adds identity to the allow-list.
func (s *Store) Allow(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return curve.ErrStoreClosed
	}
	s.allowed[identity] = struct{}{}
	return nil
}

// IsAllowed reports whether identity is on the allow-list.
func (s *Store) IsAllowed(_ context.Context, identity string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, curve.ErrStoreClosed
	}
	_, ok := s.allowed[identity]
	return ok, nil
}

// ──────────────────────────────────────────────────
// Owners
// ──────────────────────────────────────────────────

// RegisterOwner stores o with its allow-list entry consumed. The address must be
// allow-listed and not yet registered.
func (s *Store) RegisterOwner(_ context.Context, o *owner.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return curve.ErrStoreClosed
	}
	if _, exists := s.owners[o.Address]; exists {
		return fmt.Errorf("%w: %s", curve.ErrAlreadyRegistered, o.Address)
	}
	if _, ok := s.allowed[o.Address]; !ok {
		return fmt.Errorf("%w: %s", curve.ErrNotAllowListed, o.Address)
	}

	delete(s.allowed, o.Address)
	s.owners[o.Address] = cloneOwner(o)
	s.order = append(s.order, o.Address)
	return nil
}

// GetOwner returns a copy of the owner at address.
func (s *Store) GetOwner(_ context.Context, address string) (*owner.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, curve.ErrStoreClosed
	}
	o, ok := s.owners[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", curve.ErrOwnerNotFound, address)
	}
	return cloneOwner(o), nil
}

// GetSupply returns the outstanding supply of the owner at address.
func (s *Store) GetSupply(_ context.Context, address string) (uint128.Uint128, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return uint128.Zero, curve.ErrStoreClosed
	}
	o, ok := s.owners[address]
	if !ok {
		return uint128.Zero, fmt.Errorf("%w: %s", curve.ErrOwnerNotFound, address)
	}
	return o.Supply, nil
}

// ListOwners returns owners in registration order, paged by opts.
func (s *Store) ListOwners(_ context.Context, opts owner.ListOpts) ([]*owner.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, curve.ErrStoreClosed
	}

	// Apply limit/offset
	start := opts.Offset
	if start > len(s.order) {
		start = len(s.order)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(s.order) {
		end = len(s.order)
	}

	result := make([]*owner.Owner, 0, end-start)
	for _, addr := range s.order[start:end] {
		result = append(result, cloneOwner(s.owners[addr]))
	}
	return result, nil
}

// ──────────────────────────────────────────────────
// Holdings
// ──────────────────────────────────────────────────

// GetHolding returns holder's acquisitions of ownerAddr; it is empty, not an error, when none exist.
func (s *Store) GetHolding(_ context.Context, holder, ownerAddr string) (*holding.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, curve.ErrStoreClosed
	}
	h, ok := s.holdings[holdingKey{holder, ownerAddr}]
	if !ok {
		return holding.Empty(holder, ownerAddr), nil
	}
	return cloneHolding(h), nil
}

// ListHoldings returns every holding of ownerAddr, sorted by holder.
func (s *Store) ListHoldings(_ context.Context, ownerAddr string) ([]*holding.Holding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, curve.ErrStoreClosed
	}
	holders := append([]string(nil), s.byOwner[ownerAddr]...)
	sort.Strings(holders)

	result := make([]*holding.Holding, 0, len(holders))
	for _, holder := range holders {
		result = append(result, cloneHolding(s.holdings[holdingKey{holder, ownerAddr}]))
	}
	return result, nil
}

// RecordPurchase appends at to the holding and increments supply. The stored
// supply must still equal priced, otherwise ErrConflict is returned and nothing changes.
func (s *Store) RecordPurchase(_ context.Context, holder, ownerAddr string, at uint64, priced uint128.Uint128) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return curve.ErrStoreClosed
	}
	o, err := s.ownerAt(ownerAddr, priced)
	if err != nil {
		return err
	}
	next, err := types.CheckedAdd(o.Supply, uint128.From64(1))
	if err != nil {
		return err
	}

	key := holdingKey{holder, ownerAddr}
	h, ok := s.holdings[key]
	if !ok {
		h = holding.Empty(holder, ownerAddr)
		s.holdings[key] = h
		s.byOwner[ownerAddr] = append(s.byOwner[ownerAddr], holder)
	}
	h.Acquired = append(h.Acquired, at)
	o.Supply = next
	o.Touch()
	return nil
}

// RecordSale drops the most recent acquisition and decrements supply. The stored
// supply must still equal priced, otherwise ErrConflict is returned and nothing changes.
func (s *Store) RecordSale(_ context.Context, holder, ownerAddr string, priced uint128.Uint128) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return curve.ErrStoreClosed
	}
	o, err := s.ownerAt(ownerAddr, priced)
	if err != nil {
		return err
	}
	h, ok := s.holdings[holdingKey{holder, ownerAddr}]
	if !ok || h.Len() == 0 {
		return fmt.Errorf("%w: %s holds no shares of %s", curve.ErrInsufficientHoldings, holder, ownerAddr)
	}
	next, err := types.CheckedSub(o.Supply, uint128.From64(1))
	if err != nil {
		return err
	}

	h.Acquired = h.Acquired[:len(h.Acquired)-1]
	o.Supply = next
	o.Touch()
	return nil
}

// ownerAt returns the live owner record if its supply still equals priced.
func (s *Store) ownerAt(address string, priced uint128.Uint128) (*owner.Owner, error) {
	o, ok := s.owners[address]
	if !ok {
		return nil, fmt.Errorf("%w: %s", curve.ErrOwnerNotFound, address)
	}
	if !o.Supply.Equals(priced) {
		return nil, fmt.Errorf("%w: %s supply is %s, priced at %s", curve.ErrConflict, address, o.Supply, priced)
	}
	return o, nil
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Migrate is a no-op; the memory store has no schema.
func (s *Store) Migrate(_ context.Context) error { return nil }

// Ping returns ErrStoreClosed after Close.
func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return curve.ErrStoreClosed
	}
	return nil
}

// Close marks the store closed; every later call returns ErrStoreClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

func cloneOwner(o *owner.Owner) *owner.Owner {
	cp := *o
	cp.Perks = o.Perks.Clone()
	return &cp
}

func cloneHolding(h *holding.Holding) *holding.Holding {
	return &holding.Holding{
		Holder:   h.Holder,
		Owner:    h.Owner,
		Acquired: append([]uint64{}, h.Acquired...),
	}
}
