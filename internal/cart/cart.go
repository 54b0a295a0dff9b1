// Package cart holds a client's cart of product references and quantities.
// The cart lives in a single storage slot; every mutation rewrites the whole
// snapshot and loading tolerates a missing or corrupt slot.
package cart

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/shopspring/decimal"
)

// StorageKey names the slot the cart snapshot is kept under.
const StorageKey = "cart-items"

// Item is one cart line. Items are unique by ProductID.
type Item struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Storage is the durable slot backing a cart. Read returns nil data when the
// slot is empty.
type Storage interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// Cart is safe for concurrent use; mutations are serialized.
type Cart struct {
	mu      sync.Mutex
	items   []Item
	storage Storage
	logger  *slog.Logger
}

// Option configures a Cart.
type Option func(*Cart)

// WithLogger injects a slog logger for load and persist failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cart) {
		c.logger = logger
	}
}

// New loads the cart from storage. Load failures leave the cart empty.
func New(ctx context.Context, storage Storage, opts ...Option) *Cart {
	c := &Cart{storage: storage, items: []Item{}}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.load(ctx)
	return c
}

func (c *Cart) load(ctx context.Context) {
	if c.storage == nil {
		return
	}
	data, err := c.storage.Read(ctx)
	if err != nil {
		c.warn(ctx, "cart storage unreadable, starting empty", err)
		return
	}
	if len(data) == 0 {
		return
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		c.warn(ctx, "cart snapshot corrupt, starting empty", err)
		if err := c.storage.Clear(ctx); err != nil {
			c.warn(ctx, "failed to discard corrupt cart snapshot", err)
		}
		return
	}
	c.items = sanitize(items)
}

// sanitize drops non-positive lines and merges duplicates so a hand-edited
// slot cannot break the cart's invariants.
func sanitize(items []Item) []Item {
	out := make([]Item, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		if i, ok := index[it.ProductID]; ok {
			out[i].Quantity += it.Quantity
			continue
		}
		index[it.ProductID] = len(out)
		out = append(out, it)
	}
	return out
}

// AddToCart adds quantity to the product's line, appending a new line when
// the product is not in the cart yet. Quantity may be negative. A line whose
// quantity drops to zero or below is removed, and a non-positive quantity for
// a product not in the cart is ignored, so no line ever holds less than one.
func (c *Cart) AddToCart(ctx context.Context, productID int64, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		c.items[i].Quantity += quantity
		if c.items[i].Quantity <= 0 {
			c.remove(productID)
		}
	} else if quantity > 0 {
		c.items = append(c.items, Item{ProductID: productID, Quantity: quantity})
	}
	c.persist(ctx)
}

// RemoveFromCart drops the product's line. Removing an absent product is a
// no-op apart from rewriting the snapshot.
func (c *Cart) RemoveFromCart(ctx context.Context, productID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remove(productID)
	c.persist(ctx)
}

// UpdateQuantity overwrites the product's quantity; quantity <= 0 removes it.
func (c *Cart) UpdateQuantity(ctx context.Context, productID int64, quantity int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if quantity <= 0 {
		c.remove(productID)
	} else if i := c.indexOf(productID); i >= 0 {
		c.items[i].Quantity = quantity
	}
	c.persist(ctx)
}

// ClearCart empties the cart.
func (c *Cart) ClearCart(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = []Item{}
	c.persist(ctx)
}

// ItemCount is the sum of all quantities.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Items returns a copy of the lines in insertion order.
func (c *Cart) Items() []Item {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Total prices the cart against catalog. Lines whose product is missing from
// catalog contribute nothing.
func (c *Cart) Total(catalog []Product) decimal.Decimal {
	return Quote(c.Items(), catalog).Total
}

func (c *Cart) indexOf(productID int64) int {
	for i, it := range c.items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) remove(productID int64) {
	if i := c.indexOf(productID); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// persist writes the full snapshot. Failures are logged and swallowed; the
// in-memory cart stays authoritative.
func (c *Cart) persist(ctx context.Context) {
	if c.storage == nil {
		return
	}
	data, err := json.Marshal(c.items)
	if err != nil {
		c.warn(ctx, "failed to encode cart snapshot", err)
		return
	}
	if err := c.storage.Write(ctx, data); err != nil {
		c.warn(ctx, "failed to persist cart snapshot", err)
	}
}

func (c *Cart) warn(ctx context.Context, msg string, err error) {
	if c.logger == nil {
		return
	}
	c.logger.LogAttrs(ctx, slog.LevelWarn, msg, slog.String("error", err.Error()))
}
