// Package cart implements the client-side shopping cart used by the
// storefront: an observable, persistable list of quote lines that can be
// turned into a command submission payload.
package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Item is one line of the cart. Prices are snapshots of the catalog at the
// time the product was added; the server recomputes them on submission.
type Item struct {
	ProductID    string  `json:"id"`
	Titre        string  `json:"titre"`
	Quantite     int     `json:"quantite"`
	PrixUnitaire float64 `json:"prix_unitaire"`
	PrixTotal    string  `json:"prix_total"`
	ProductImage string  `json:"productimage,omitempty"`
}

// Storage persists the serialized cart between sessions. Implementations
// must tolerate Load returning no data for a fresh client.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Buyer carries the contact details collected at checkout.
type Buyer struct {
	Nom              string `json:"nom"`
	Prenom           string `json:"prenom"`
	Email            string `json:"email"`
	Telephone        string `json:"telephone"`
	Societe          string `json:"societe,omitempty"`
	MatriculeFiscale string `json:"matricule_fiscale,omitempty"`
	Personnalisation string `json:"personnalisation,omitempty"`
	Message          string `json:"message,omitempty"`
}

// CheckoutPayload is the body posted to the command endpoint.
type CheckoutPayload struct {
	Buyer
	TotalEstimation string `json:"total_estimation"`
	Currency        string `json:"currency,omitempty"`
	Items           []Item `json:"items"`
}

const envelopeVersion = 1

type envelope struct {
	Version int    `json:"version"`
	Items   []Item `json:"items"`
}

// Cart is safe for concurrent use. Every mutation is persisted through the
// configured Storage and announced to subscribers.
type Cart struct {
	mu          sync.RWMutex
	items       []Item
	storage     Storage
	subscribers []chan struct{}
}

// New returns a cart backed by storage. A nil storage gives a purely
// in-memory cart. Previously persisted items are loaded; a legacy bare JSON
// array is accepted and migrated to the current envelope on the next save.
func New(storage Storage) (*Cart, error) {
	c := &Cart{storage: storage}
	if storage == nil {
		return c, nil
	}

	data, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(data) == 0 {
		return c, nil
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err == nil && env.Version >= 1 {
		c.items = env.Items
		return c, nil
	}

	var legacy []Item
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, errors.New("unreadable cart data")
	}
	c.items = legacy
	return c, nil
}

// Add puts an item in the cart. Adding a product already present merges into
// the existing line by summing quantities instead of duplicating it.
func (c *Cart) Add(item Item) error {
	if item.ProductID == "" {
		return errors.New("item requires a product id")
	}
	if item.Quantite <= 0 {
		return errors.New("quantity must be positive")
	}

	c.mu.Lock()
	merged := false
	for i := range c.items {
		if c.items[i].ProductID == item.ProductID {
			c.items[i].Quantite += item.Quantite
			c.items[i].PrixUnitaire = item.PrixUnitaire
			c.items[i].PrixTotal = lineTotal(c.items[i])
			merged = true
			break
		}
	}
	if !merged {
		item.PrixTotal = lineTotal(item)
		c.items = append(c.items, item)
	}
	err := c.persistLocked()
	c.mu.Unlock()

	c.notify()
	return err
}

// Remove drops the line at index. Out-of-range indexes are an error and leave
// the cart untouched.
func (c *Cart) Remove(index int) error {
	c.mu.Lock()
	if index < 0 || index >= len(c.items) {
		c.mu.Unlock()
		return fmt.Errorf("no cart line at index %d", index)
	}
	c.items = append(c.items[:index], c.items[index+1:]...)
	err := c.persistLocked()
	c.mu.Unlock()

	c.notify()
	return err
}

// SetQuantity updates the quantity of the line at index. A quantity of zero
// removes the line.
func (c *Cart) SetQuantity(index, quantity int) error {
	if quantity < 0 {
		return errors.New("quantity must not be negative")
	}
	if quantity == 0 {
		return c.Remove(index)
	}

	c.mu.Lock()
	if index < 0 || index >= len(c.items) {
		c.mu.Unlock()
		return fmt.Errorf("no cart line at index %d", index)
	}
	c.items[index].Quantite = quantity
	c.items[index].PrixTotal = lineTotal(c.items[index])
	err := c.persistLocked()
	c.mu.Unlock()

	c.notify()
	return err
}

// Clear empties the cart.
func (c *Cart) Clear() error {
	c.mu.Lock()
	c.items = nil
	err := c.persistLocked()
	c.mu.Unlock()

	c.notify()
	return err
}

// Items returns a copy of the current lines.
func (c *Cart) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of lines in the cart.
func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Total sums quantity times unit price across all lines.
func (c *Cart) Total() float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total float64
	for _, it := range c.items {
		total += float64(it.Quantite) * it.PrixUnitaire
	}
	return total
}

// Subscribe returns a channel that receives a signal after every mutation.
// The channel has a buffer of one; a slow consumer coalesces signals rather
// than blocking the cart.
func (c *Cart) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subscribers = append(c.subscribers, ch)
	c.mu.Unlock()
	return ch
}

// CheckoutRequest assembles the command submission payload for the current
// cart contents. An empty cart cannot be checked out.
func (c *Cart) CheckoutRequest(buyer Buyer) (CheckoutPayload, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(c.items) == 0 {
		return CheckoutPayload{}, errors.New("cart is empty")
	}

	items := make([]Item, len(c.items))
	copy(items, c.items)

	var total float64
	for _, it := range items {
		total += float64(it.Quantite) * it.PrixUnitaire
	}

	return CheckoutPayload{
		Buyer:           buyer,
		TotalEstimation: fmt.Sprintf("%.2f", total),
		Items:           items,
	}, nil
}

func (c *Cart) persistLocked() error {
	if c.storage == nil {
		return nil
	}
	data, err := json.Marshal(envelope{Version: envelopeVersion, Items: c.items})
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := c.storage.Save(data); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (c *Cart) notify() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ch := range c.subscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func lineTotal(it Item) string {
	return fmt.Sprintf("%.2f", float64(it.Quantite)*it.PrixUnitaire)
}
