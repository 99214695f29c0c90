package cart

import (
	"encoding/json"
	"testing"

	"github.com/selhani/parfumo-backend/internal/pricing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRules() pricing.Rules {
	return pricing.Rules{
		FreeDeliveryThreshold: 50,
		DeliveryFee:           5,
		LowStockThreshold:     5,
	}
}

func newTestCart(t *testing.T) (*Cart, *MemoryStorage) {
	storage := NewMemoryStorage()
	c, err := New(storage, testRules())
	require.NoError(t, err)
	return c, storage
}

func sampleItem() ItemParams {
	return ItemParams{
		ProductID:     1,
		Name:          "Oud Royal",
		Slug:          "oud-royal",
		SKU:           "PRF-001",
		Price:         20,
		Quantity:      2,
		StockQuantity: 10,
	}
}

func TestItemID(t *testing.T) {
	variantID := uint(7)

	assert.Equal(t, "3", ItemID(3, nil))
	assert.Equal(t, "3-7", ItemID(3, &variantID))
}

func TestCart_AddItem(t *testing.T) {
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(sampleItem()))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, c.Open(), "adding an item opens the cart")
}

func TestCart_AddItem_MergesExistingLine(t *testing.T) {
	c, _ := newTestCart(t)

	item := sampleItem()
	require.NoError(t, c.AddItem(item))
	item.Quantity = 3
	require.NoError(t, c.AddItem(item))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestCart_AddItem_ClampsMergeToStock(t *testing.T) {
	c, _ := newTestCart(t)

	item := sampleItem()
	item.StockQuantity = 4
	require.NoError(t, c.AddItem(item))
	item.Quantity = 3
	require.NoError(t, c.AddItem(item))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity, "merged quantity clamps to stock")
}

func TestCart_AddItem_VariantIsSeparateLine(t *testing.T) {
	c, _ := newTestCart(t)
	variantID := uint(2)

	require.NoError(t, c.AddItem(sampleItem()))

	withVariant := sampleItem()
	withVariant.VariantID = &variantID
	withVariant.VariantName = "100ml"
	require.NoError(t, c.AddItem(withVariant))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "1-2", items[1].ID)
}

func TestCart_AddItem_PreservesInsertionOrder(t *testing.T) {
	c, _ := newTestCart(t)

	for i := uint(1); i <= 3; i++ {
		item := sampleItem()
		item.ProductID = i
		require.NoError(t, c.AddItem(item))
	}

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, []string{"1", "2", "3"}, []string{items[0].ID, items[1].ID, items[2].ID})
}

func TestCart_RemoveItem(t *testing.T) {
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(sampleItem()))
	require.NoError(t, c.RemoveItem("1"))
	assert.Equal(t, 0, c.Len())

	// Unknown ID is a no-op
	require.NoError(t, c.RemoveItem("999"))
}

func TestCart_UpdateQuantity(t *testing.T) {
	c, _ := newTestCart(t)
	require.NoError(t, c.AddItem(sampleItem()))

	require.NoError(t, c.UpdateQuantity("1", 7))
	assert.Equal(t, 7, c.Items()[0].Quantity)

	// Clamped to stock
	require.NoError(t, c.UpdateQuantity("1", 100))
	assert.Equal(t, 10, c.Items()[0].Quantity)

	// Unknown ID is a no-op
	require.NoError(t, c.UpdateQuantity("999", 3))
	assert.Equal(t, 10, c.Items()[0].Quantity)
}

func TestCart_UpdateQuantity_ZeroAndNegativeRemove(t *testing.T) {
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(sampleItem()))
	require.NoError(t, c.UpdateQuantity("1", 0))
	assert.Equal(t, 0, c.Len())

	require.NoError(t, c.AddItem(sampleItem()))
	require.NoError(t, c.UpdateQuantity("1", -4))
	assert.Equal(t, 0, c.Len())
}

func TestCart_QuantityInvariant(t *testing.T) {
	c, _ := newTestCart(t)

	item := sampleItem()
	item.StockQuantity = 3
	for i := 0; i < 5; i++ {
		require.NoError(t, c.AddItem(item))
		for _, line := range c.Items() {
			assert.GreaterOrEqual(t, line.Quantity, 1)
			assert.LessOrEqual(t, line.Quantity, line.StockQuantity)
		}
	}
}

func TestCart_Totals(t *testing.T) {
	c, _ := newTestCart(t)

	// One item price=20 qty=2: subtotal 40, below threshold
	require.NoError(t, c.AddItem(sampleItem()))
	assert.Equal(t, 40.0, c.Subtotal())
	assert.Equal(t, 5.0, c.DeliveryFee())
	assert.Equal(t, 45.0, c.Total())
	assert.Equal(t, 2, c.TotalQuantity())
	assert.Equal(t, 1, c.Len())

	// Same item again qty=3 with stock 4: quantity clamps to 4
	item := sampleItem()
	item.Quantity = 3
	item.StockQuantity = 4
	require.NoError(t, c.AddItem(item))

	assert.Equal(t, 80.0, c.Subtotal())
	assert.Equal(t, 0.0, c.DeliveryFee(), "free delivery above threshold")
	assert.Equal(t, 80.0, c.Total())
	assert.Equal(t, 4, c.TotalQuantity())
}

func TestCart_Clear(t *testing.T) {
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(sampleItem()))
	require.NoError(t, c.Clear())

	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0.0, c.Subtotal())
	assert.Equal(t, 0, c.TotalQuantity())
	assert.False(t, c.Open(), "clearing closes the cart")
}

func TestCart_PersistsAcrossRestore(t *testing.T) {
	storage := NewMemoryStorage()
	c, err := New(storage, testRules())
	require.NoError(t, err)

	require.NoError(t, c.AddItem(sampleItem()))
	require.NoError(t, c.UpdateQuantity("1", 5))

	// Restore into a fresh cart from the same slot
	restored, err := New(storage, testRules())
	require.NoError(t, err)

	items := restored.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, "Oud Royal", items[0].Name)
	assert.False(t, restored.Open(), "open flag is not persisted")
}

func TestCart_StorageHoldsItemArrayOnly(t *testing.T) {
	c, storage := newTestCart(t)
	require.NoError(t, c.AddItem(sampleItem()))

	data, err := storage.Load()
	require.NoError(t, err)

	var decoded []Item
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "1", decoded[0].ID)
}

func TestCart_EmptyCartTotals(t *testing.T) {
	c, _ := newTestCart(t)

	assert.Equal(t, 0.0, c.Subtotal())
	assert.Equal(t, 0.0, c.DeliveryFee(), "nothing to deliver, no fee")
	assert.Equal(t, 0.0, c.Total())
	assert.Equal(t, 0, c.TotalQuantity())
}

func TestCart_DeliveryFeeReturnsAfterEmptying(t *testing.T) {
	c, _ := newTestCart(t)

	require.NoError(t, c.AddItem(sampleItem()))
	assert.Equal(t, 5.0, c.DeliveryFee())

	require.NoError(t, c.Clear())
	assert.Equal(t, 0.0, c.DeliveryFee())
	assert.Equal(t, 0.0, c.Total())
}

func TestCart_AddItem_RejectsZeroStock(t *testing.T) {
	c, _ := newTestCart(t)

	item := sampleItem()
	item.StockQuantity = 0
	require.NoError(t, c.AddItem(item))

	assert.Equal(t, 0, c.Len())
	assert.False(t, c.Open())
}
