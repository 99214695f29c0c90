package service

import (
	"strings"
	"testing"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type checkoutTestEnv struct {
	checkout CheckoutService
	cart     CartService
	db       *gorm.DB
	product  *model.Product
}

func setupCheckoutTest(t *testing.T) checkoutTestEnv {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	productRepo := repository.NewProductRepository(testDB)
	variantRepo := repository.NewProductVariantRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	settingRepo := repository.NewSettingRepository(testDB)
	settings := NewSettingService(settingRepo, testStoreDefaults)

	storageFor := memoryStorageFactory()
	cartService := NewCartService(productRepo, variantRepo, settings, storageFor)
	checkoutService := NewCheckoutService(orderRepo, settings, storageFor, nil, testDB)

	brand := &model.Brand{Name: "Aroma", Slug: "aroma"}
	testDB.Create(brand)
	category := &model.Category{Name: "Eau de Parfum", Slug: "eau-de-parfum"}
	testDB.Create(category)

	product := &model.Product{
		Name:          "Oud Royal",
		Slug:          "oud-royal",
		SKU:           "OUD-001",
		BrandID:       brand.ID,
		CategoryID:    category.ID,
		Price:         120,
		StockQuantity: 10,
	}
	testDB.Create(product)

	return checkoutTestEnv{
		checkout: checkoutService,
		cart:     cartService,
		db:       testDB,
		product:  product,
	}
}

func validCheckoutInput(cartID string) CheckoutInput {
	return CheckoutInput{
		CartID:   cartID,
		FullName: "Yasmine El Fassi",
		Phone:    "+212612345678",
		City:     "Casablanca",
		Address:  "12 Rue des Orangers",
	}
}

func TestCheckoutService_Checkout_Success(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.cart.AddItem("cart-1", env.product.ID, nil, 2)
	require.NoError(t, err)

	result, err := env.checkout.Checkout(validCheckoutInput("cart-1"))
	require.NoError(t, err)
	require.NotNil(t, result.Order)

	order := result.Order
	assert.NotZero(t, order.ID)
	assert.NotEmpty(t, order.OrderNumber)
	assert.Nil(t, order.UserID)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, model.PaymentCashOnDelivery, order.PaymentMethod)
	assert.Equal(t, float64(240), order.Subtotal)
	assert.Equal(t, float64(30), order.DeliveryFee)
	assert.Equal(t, float64(270), order.TotalAmount)

	require.Len(t, order.OrderItems, 1)
	item := order.OrderItems[0]
	assert.Equal(t, env.product.Name, item.ProductName)
	assert.Equal(t, env.product.SKU, item.SKU)
	assert.Equal(t, float64(120), item.UnitPrice)
	assert.Equal(t, 2, item.Quantity)

	// Stock decremented
	var updated model.Product
	env.db.First(&updated, env.product.ID)
	assert.Equal(t, 8, updated.StockQuantity)

	// Cart cleared after a durable order
	view, err := env.cart.GetCart("cart-1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	// WhatsApp message and link are produced from the stored order
	assert.Contains(t, result.Message, order.OrderNumber)
	assert.Contains(t, result.Message, "Oud Royal")
	assert.True(t, strings.HasPrefix(result.WhatsAppURL, "https://wa.me/"))
}

func TestCheckoutService_Checkout_MissingFields(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.cart.AddItem("cart-1", env.product.ID, nil, 1)
	require.NoError(t, err)

	input := CheckoutInput{CartID: "cart-1", FullName: "  ", Phone: "+212612345678"}
	result, err := env.checkout.Checkout(input)
	assert.Nil(t, result)

	var missing *MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.ElementsMatch(t, []string{"full_name", "city", "address"}, missing.Fields)

	// Nothing was submitted
	var count int64
	env.db.Model(&model.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestCheckoutService_Checkout_EmptyCart(t *testing.T) {
	env := setupCheckoutTest(t)

	result, err := env.checkout.Checkout(validCheckoutInput("cart-1"))
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, result)
}

func TestCheckoutService_Checkout_InsufficientStock(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.cart.AddItem("cart-1", env.product.ID, nil, 5)
	require.NoError(t, err)

	// Stock dropped between add and checkout
	env.db.Model(env.product).Update("stock_quantity", 3)

	result, err := env.checkout.Checkout(validCheckoutInput("cart-1"))
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, result)

	// Rolled back: stock untouched, no order rows
	var updated model.Product
	env.db.First(&updated, env.product.ID)
	assert.Equal(t, 3, updated.StockQuantity)

	var count int64
	env.db.Model(&model.Order{}).Count(&count)
	assert.Zero(t, count)

	// Cart kept so the shopper can adjust it
	view, err := env.cart.GetCart("cart-1")
	require.NoError(t, err)
	assert.Len(t, view.Items, 1)
}

func TestCheckoutService_Checkout_SnapshotsCurrentPrice(t *testing.T) {
	env := setupCheckoutTest(t)

	_, err := env.cart.AddItem("cart-1", env.product.ID, nil, 1)
	require.NoError(t, err)

	// Price changed after the item was added; the order takes the row as
	// it is at checkout time.
	env.db.Model(env.product).Updates(map[string]interface{}{
		"price": 150,
		"name":  "Oud Royal Intense",
	})

	result, err := env.checkout.Checkout(validCheckoutInput("cart-1"))
	require.NoError(t, err)

	item := result.Order.OrderItems[0]
	assert.Equal(t, float64(150), item.UnitPrice)
	assert.Equal(t, "Oud Royal Intense", item.ProductName)
	assert.Equal(t, float64(150), result.Order.Subtotal)
}

func TestCheckoutService_Checkout_VariantStock(t *testing.T) {
	env := setupCheckoutTest(t)

	variant := &model.ProductVariant{
		ProductID:       env.product.ID,
		Name:            "100ml",
		SKU:             "OUD-001-100",
		AdditionalPrice: 40,
		StockQuantity:   3,
	}
	env.db.Create(variant)

	_, err := env.cart.AddItem("cart-1", env.product.ID, &variant.ID, 2)
	require.NoError(t, err)

	result, err := env.checkout.Checkout(validCheckoutInput("cart-1"))
	require.NoError(t, err)

	item := result.Order.OrderItems[0]
	assert.Equal(t, float64(160), item.UnitPrice)
	assert.Equal(t, "100ml", item.VariantName)
	assert.Equal(t, variant.SKU, item.SKU)

	// Variant stock decremented, base product stock untouched
	var updatedVariant model.ProductVariant
	env.db.First(&updatedVariant, variant.ID)
	assert.Equal(t, 1, updatedVariant.StockQuantity)

	var updatedProduct model.Product
	env.db.First(&updatedProduct, env.product.ID)
	assert.Equal(t, 10, updatedProduct.StockQuantity)
}

func TestCheckoutService_Checkout_FreeDeliveryAboveThreshold(t *testing.T) {
	env := setupCheckoutTest(t)

	env.db.Model(env.product).Update("price", 300)

	_, err := env.cart.AddItem("cart-1", env.product.ID, nil, 2)
	require.NoError(t, err)

	result, err := env.checkout.Checkout(validCheckoutInput("cart-1"))
	require.NoError(t, err)
	assert.Equal(t, float64(600), result.Order.Subtotal)
	assert.Equal(t, float64(0), result.Order.DeliveryFee)
	assert.Equal(t, float64(600), result.Order.TotalAmount)
}

func TestCheckoutService_Checkout_AttachesUser(t *testing.T) {
	env := setupCheckoutTest(t)

	user := &model.User{
		Email:        "customer@example.com",
		PasswordHash: "hash",
		Name:         "Customer",
		Role:         model.RoleUser,
	}
	env.db.Create(user)

	_, err := env.cart.AddItem("cart-1", env.product.ID, nil, 1)
	require.NoError(t, err)

	input := validCheckoutInput("cart-1")
	input.UserID = &user.ID

	result, err := env.checkout.Checkout(input)
	require.NoError(t, err)
	require.NotNil(t, result.Order.UserID)
	assert.Equal(t, user.ID, *result.Order.UserID)
}
