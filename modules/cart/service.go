package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/shopspring/decimal"

	domain "github.com/example/shopsphere-client/domain/cart"
	"github.com/example/shopsphere-client/domain/identity"
	"github.com/example/shopsphere-client/modules/gateway"
)

var (
	// ErrLoginRequired is returned, before any network call, for every
	// mutation attempted while the session is anonymous.
	ErrLoginRequired = errors.New("login required")
	// ErrInvalidQuantity is returned, before any network call, when the
	// requested quantity does not coerce to an acceptable integer.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Session is the slice of the session store the cart needs.
type Session interface {
	Current() (identity.Identity, bool)
}

// Store owns the authenticated user's in-progress order contents. Every
// mutation round-trips through the gateway and then re-fetches the full
// collection; there is no local optimistic merge. Overlapping mutations are
// serialized under the store mutex, so two rapid identical triggers become
// two ordered request/reload cycles instead of a race.
type Store struct {
	gw      *gateway.Client
	session Session

	mu    sync.RWMutex
	lines []domain.Line
}

// NewStore creates a Store over the gateway client and the session.
func NewStore(gw *gateway.Client, session Session) *Store {
	return &Store{gw: gw, session: session}
}

// Add puts quantity units of a product into the cart and reloads.
func (s *Store) Add(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	if _, ok := s.session.Current(); !ok {
		return ErrLoginRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gw.AddToCart(ctx, productID, quantity); err != nil {
		return err
	}
	return s.reloadLocked(ctx)
}

// SetQuantity updates a line's quantity and reloads. A quantity of zero is
// translated into a removal; a negative quantity is rejected locally.
func (s *Store) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if _, ok := s.session.Current(); !ok {
		return ErrLoginRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	if quantity == 0 {
		err = s.gw.RemoveFromCart(ctx, productID)
	} else {
		err = s.gw.UpdateCartItem(ctx, productID, quantity)
	}
	if err != nil {
		return err
	}
	return s.reloadLocked(ctx)
}

// Remove drops a line and reloads.
func (s *Store) Remove(ctx context.Context, productID int64) error {
	if _, ok := s.session.Current(); !ok {
		return ErrLoginRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gw.RemoveFromCart(ctx, productID); err != nil {
		return err
	}
	return s.reloadLocked(ctx)
}

// Clear empties the cart and reloads.
func (s *Store) Clear(ctx context.Context) error {
	if _, ok := s.session.Current(); !ok {
		return ErrLoginRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.gw.ClearCart(ctx); err != nil {
		return err
	}
	return s.reloadLocked(ctx)
}

// Reload replaces the held collection with the server's current one. While
// anonymous the held collection is forced empty instead of fetched.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

func (s *Store) reloadLocked(ctx context.Context) error {
	if _, ok := s.session.Current(); !ok {
		s.lines = nil
		return nil
	}
	lines, err := s.gw.CartItems(ctx)
	if err != nil {
		s.lines = nil
		return err
	}
	s.lines = lines
	return nil
}

// Lines returns a copy of the held collection.
func (s *Store) Lines() []domain.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := make([]domain.Line, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// ItemCount is the sum of quantities, computed fresh from the held
// collection on every read.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ItemCount(s.lines)
}

// Total is the sum of line totals, computed fresh from the held collection
// on every read.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Total(s.lines)
}
