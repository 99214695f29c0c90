package cart

import (
	"encoding/json"
	"fmt"

	"github.com/selhani/parfumo-backend/internal/pricing"
)

// Item is one line in the cart: a product (and optional variant) with a
// quantity. Price is the effective unit price captured when the item was
// added; name, slug and image are display snapshots.
type Item struct {
	ID            string  `json:"id"`
	ProductID     uint    `json:"product_id"`
	VariantID     *uint   `json:"variant_id,omitempty"`
	Name          string  `json:"name"`
	Slug          string  `json:"slug"`
	ImageURL      string  `json:"image_url"`
	SKU           string  `json:"sku"`
	Price         float64 `json:"price"`
	Quantity      int     `json:"quantity"`
	StockQuantity int     `json:"stock_quantity"`
	VariantName   string  `json:"variant_name,omitempty"`
}

// ItemParams describes an item to add; the line ID is derived from the
// product and variant IDs.
type ItemParams struct {
	ProductID     uint
	VariantID     *uint
	Name          string
	Slug          string
	ImageURL      string
	SKU           string
	Price         float64
	Quantity      int
	StockQuantity int
	VariantName   string
}

// Storage persists the serialized item array. The open flag is deliberately
// not persisted; a restored cart always starts closed.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// Cart is the authoritative list of items a shopper intends to purchase.
// All totals are derived from the current items on read; nothing is cached,
// so no total can desynchronize from the item list. Cart is not safe for
// concurrent use; each shopper session owns exactly one Cart.
type Cart struct {
	items   []Item
	open    bool
	rules   pricing.Rules
	storage Storage
}

// New restores a cart from storage, or starts empty when the slot is empty.
func New(storage Storage, rules pricing.Rules) (*Cart, error) {
	c := &Cart{
		rules:   rules,
		storage: storage,
	}

	data, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c.items); err != nil {
			return nil, fmt.Errorf("failed to decode cart: %w", err)
		}
	}

	return c, nil
}

// ItemID derives the line ID for a product+variant combination.
func ItemID(productID uint, variantID *uint) string {
	if variantID == nil {
		return fmt.Sprintf("%d", productID)
	}
	return fmt.Sprintf("%d-%d", productID, *variantID)
}

// AddItem adds an item to the cart. When a line with the same product+variant
// already exists its quantity is increased, clamped to the available stock,
// instead of creating a duplicate line. Adding opens the cart. Items without
// stock are never admitted; every line holds 1 <= quantity <= stock.
func (c *Cart) AddItem(p ItemParams) error {
	if p.StockQuantity <= 0 {
		return nil
	}

	id := ItemID(p.ProductID, p.VariantID)

	quantity := p.Quantity
	if quantity < 1 {
		quantity = 1
	}

	merged := false
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity = clamp(c.items[i].Quantity+quantity, 1, p.StockQuantity)
			c.items[i].StockQuantity = p.StockQuantity
			merged = true
			break
		}
	}

	if !merged {
		c.items = append(c.items, Item{
			ID:            id,
			ProductID:     p.ProductID,
			VariantID:     p.VariantID,
			Name:          p.Name,
			Slug:          p.Slug,
			ImageURL:      p.ImageURL,
			SKU:           p.SKU,
			Price:         p.Price,
			Quantity:      clamp(quantity, 1, p.StockQuantity),
			StockQuantity: p.StockQuantity,
			VariantName:   p.VariantName,
		})
	}

	c.open = true
	return c.save()
}

// RemoveItem deletes the line with the given ID. Unknown IDs are a no-op.
func (c *Cart) RemoveItem(id string) error {
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return c.save()
		}
	}
	return nil
}

// UpdateQuantity sets the quantity of the line with the given ID, clamped to
// the available stock. A quantity of zero or less removes the line. Unknown
// IDs are a no-op.
func (c *Cart) UpdateQuantity(id string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveItem(id)
	}
	for i := range c.items {
		if c.items[i].ID == id {
			c.items[i].Quantity = clamp(quantity, 1, c.items[i].StockQuantity)
			return c.save()
		}
	}
	return nil
}

// Clear empties the cart and closes it.
func (c *Cart) Clear() error {
	c.items = nil
	c.open = false
	return c.save()
}

// Items returns a copy of the cart lines in insertion order.
func (c *Cart) Items() []Item {
	items := make([]Item, len(c.items))
	copy(items, c.items)
	return items
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int {
	return len(c.items)
}

// Open reports whether the cart UI panel should be shown.
func (c *Cart) Open() bool {
	return c.open
}

// SetOpen toggles the cart UI panel without touching the items.
func (c *Cart) SetOpen(open bool) {
	c.open = open
}

// Subtotal is the sum of price times quantity over all lines.
func (c *Cart) Subtotal() float64 {
	var subtotal float64
	for _, item := range c.items {
		subtotal += item.Price * float64(item.Quantity)
	}
	return subtotal
}

// DeliveryFee derives the delivery fee from the current subtotal. An empty
// cart has nothing to deliver, so it carries no fee.
func (c *Cart) DeliveryFee() float64 {
	if len(c.items) == 0 {
		return 0
	}
	return c.rules.DeliveryFeeFor(c.Subtotal())
}

// Total is subtotal plus delivery fee.
func (c *Cart) Total() float64 {
	return c.Subtotal() + c.DeliveryFee()
}

// TotalQuantity is the sum of quantities over all lines, as opposed to Len
// which counts distinct lines.
func (c *Cart) TotalQuantity() int {
	var total int
	for _, item := range c.items {
		total += item.Quantity
	}
	return total
}

func (c *Cart) save() error {
	data, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := c.storage.Save(data); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
