package gateway

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrGatewayNotFound is returned for an unknown gateway id.
	ErrGatewayNotFound = errors.New("gateway not found")

	// ErrNotSupported is returned when a gateway lacks the requested capability.
	ErrNotSupported = errors.New("operation not supported by gateway")
)

// Registry holds the configured gateways by id.
type Registry struct {
	mu       sync.RWMutex
	gateways map[int64]Gateway
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{gateways: make(map[int64]Gateway)}
}

// Register adds a gateway. Registering an id twice is an error.
func (r *Registry) Register(g Gateway) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.gateways[g.ID()]; exists {
		return fmt.Errorf("gateway %d already registered", g.ID())
	}
	r.gateways[g.ID()] = g
	return nil
}

// Get returns the gateway with the given id.
func (r *Registry) Get(id int64) (Gateway, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.gateways[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrGatewayNotFound, id)
	}
	return g, nil
}

// Charge returns the gateway as ChargeCapable.
func (r *Registry) Charge(id int64) (ChargeCapable, error) {
	g, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	c, ok := g.(ChargeCapable)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s gateway", ErrNotSupported, g.Name(), g.Variant())
	}
	return c, nil
}

// Subscription returns the gateway as SubscriptionCapable.
func (r *Registry) Subscription(id int64) (SubscriptionCapable, error) {
	g, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	s, ok := g.(SubscriptionCapable)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s gateway", ErrNotSupported, g.Name(), g.Variant())
	}
	return s, nil
}

// PaymentMethods returns the gateway as PaymentMethodCapable.
func (r *Registry) PaymentMethods(id int64) (PaymentMethodCapable, error) {
	g, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	p, ok := g.(PaymentMethodCapable)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s gateway", ErrNotSupported, g.Name(), g.Variant())
	}
	return p, nil
}

// All returns every gateway ordered by id.
func (r *Registry) All() []Gateway {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Gateway, 0, len(r.gateways))
	for _, g := range r.gateways {
		all = append(all, g)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID() < all[j].ID() })
	return all
}
