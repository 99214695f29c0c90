package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/selhani/parfumo-backend/config"
	"github.com/selhani/parfumo-backend/internal/app/controller"
	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/app/service"
	"github.com/selhani/parfumo-backend/internal/cart"
	"github.com/selhani/parfumo-backend/internal/db"
	"github.com/selhani/parfumo-backend/internal/middleware"
	"github.com/selhani/parfumo-backend/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
}

// stubBlacklist stands in for the Redis-backed token blacklist.
type stubBlacklist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newStubBlacklist() *stubBlacklist {
	return &stubBlacklist{revoked: make(map[string]bool)}
}

func (b *stubBlacklist) Revoke(_ context.Context, token string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked[token] = true
	return nil
}

func (b *stubBlacklist) IsRevoked(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revoked[token], nil
}

func setupIntegrationTest(t *testing.T) *TestServer {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	storeDefaults := config.StoreConfig{
		Name:                  "Parfumo",
		Currency:              "MAD",
		WhatsAppNumber:        "+212600000000",
		DeliveryFee:           30,
		FreeDeliveryThreshold: 500,
		LowStockThreshold:     5,
	}

	// Repositories
	userRepo := repository.NewUserRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	variantRepo := repository.NewProductVariantRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	settingRepo := repository.NewSettingRepository(testDB)

	// One in-memory slot per cart ID, shared between the cart and
	// checkout services so they see the same cart.
	slots := make(map[string]*cart.MemoryStorage)
	storageFor := service.StorageFactory(func(cartID string) cart.Storage {
		slot, ok := slots[cartID]
		if !ok {
			slot = cart.NewMemoryStorage()
			slots[cartID] = slot
		}
		return slot
	})

	hub := ws.NewHub()
	go hub.Run()

	// Services
	authService := service.NewAuthService(userRepo, newStubBlacklist(), "test-secret", 15*time.Minute, 7*24*time.Hour)
	settingService := service.NewSettingService(settingRepo, storeDefaults)
	productService := service.NewProductService(productRepo, variantRepo, reviewRepo, settingService)
	cartService := service.NewCartService(productRepo, variantRepo, settingService, storageFor)
	checkoutService := service.NewCheckoutService(orderRepo, settingService, storageFor, hub, testDB)
	orderService := service.NewOrderService(orderRepo, hub)

	// Controllers
	authController := controller.NewAuthController(authService)
	productController := controller.NewProductController(productService)
	cartController := controller.NewCartController(cartService)
	checkoutController := controller.NewCheckoutController(checkoutService)
	orderController := controller.NewOrderController(orderService)

	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authMiddleware.Authenticate(), authController.GetMe)
	}

	products := api.Group("/products")
	{
		products.GET("", productController.ListProducts)
		products.GET("/:slug", productController.GetProductBySlug)
	}

	cartGroup := api.Group("/cart", middleware.CartSession())
	{
		cartGroup.GET("", cartController.GetCart)
		cartGroup.POST("/items", cartController.AddItem)
		cartGroup.PUT("/items/:id", cartController.UpdateItem)
		cartGroup.DELETE("/items/:id", cartController.RemoveItem)
		cartGroup.DELETE("", cartController.ClearCart)
	}

	api.POST("/checkout", middleware.CartSession(), authMiddleware.OptionalAuthenticate(), checkoutController.Checkout)

	orders := api.Group("/orders", authMiddleware.Authenticate())
	{
		orders.GET("", orderController.GetMyOrders)
		orders.GET("/:id", orderController.GetMyOrder)
	}

	admin := api.Group("/admin", authMiddleware.Authenticate(), authMiddleware.RequireRole("admin"))
	{
		admin.GET("/orders", orderController.ListOrders)
		admin.PUT("/orders/:id/status", orderController.UpdateStatus)
	}

	return &TestServer{Router: router, DB: testDB}
}

func seedProduct(t *testing.T, testDB *gorm.DB) *model.Product {
	brand := &model.Brand{Name: "Aroma", Slug: "aroma"}
	require.NoError(t, testDB.Create(brand).Error)
	category := &model.Category{Name: "Eau de Parfum", Slug: "eau-de-parfum"}
	require.NoError(t, testDB.Create(category).Error)

	product := &model.Product{
		Name:          "Oud Royal",
		Slug:          "oud-royal",
		SKU:           "OUD-001",
		BrandID:       brand.ID,
		CategoryID:    category.ID,
		Price:         120,
		StockQuantity: 10,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}

func jsonRequest(method, path string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGuestShoppingJourney(t *testing.T) {
	ts := setupIntegrationTest(t)
	product := seedProduct(t, ts.DB)

	// 1. Browse the catalog
	t.Log("Step 1: Browse products")
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/products", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Oud Royal")

	// 2. Add to cart
	t.Log("Step 2: Add to cart")
	req := jsonRequest("POST", "/api/v1/cart/items", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	})
	req.Header.Set(middleware.CartIDHeader, "cart-journey")
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	// 3. View cart and check derived totals
	t.Log("Step 3: View cart")
	req = httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set(middleware.CartIDHeader, "cart-journey")
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var cartResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cartResp))
	cartView := cartResp["cart"].(map[string]interface{})
	assert.Equal(t, float64(240), cartView["subtotal"])
	assert.Equal(t, float64(30), cartView["delivery_fee"])
	assert.Equal(t, float64(270), cartView["total"])

	// 4. Checkout as guest
	t.Log("Step 4: Checkout")
	req = jsonRequest("POST", "/api/v1/checkout", map[string]string{
		"full_name": "Yasmine El Fassi",
		"phone":     "+212612345678",
		"city":      "Casablanca",
		"address":   "12 Rue des Orangers",
	})
	req.Header.Set(middleware.CartIDHeader, "cart-journey")
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var checkoutResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &checkoutResp))
	order := checkoutResp["order"].(map[string]interface{})
	assert.Equal(t, "pending", order["status"])
	assert.NotEmpty(t, order["order_number"])
	assert.Contains(t, checkoutResp["whatsapp_url"], "https://wa.me/")
	assert.Contains(t, checkoutResp["message"], "Oud Royal")

	// 5. Cart is cleared after checkout
	t.Log("Step 5: Verify cart is empty")
	req = httptest.NewRequest("GET", "/api/v1/cart", nil)
	req.Header.Set(middleware.CartIDHeader, "cart-journey")
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cartResp))
	cartView = cartResp["cart"].(map[string]interface{})
	assert.Equal(t, float64(0), cartView["item_count"])

	// 6. Stock decreased
	t.Log("Step 6: Verify stock decreased")
	var updatedProduct model.Product
	ts.DB.First(&updatedProduct, product.ID)
	assert.Equal(t, 8, updatedProduct.StockQuantity)

	// 7. Order persisted with snapshot line
	t.Log("Step 7: Verify order persisted")
	var orderCount int64
	ts.DB.Model(&model.Order{}).Count(&orderCount)
	assert.Equal(t, int64(1), orderCount)
}

func TestCheckout_MissingCustomerFields(t *testing.T) {
	ts := setupIntegrationTest(t)
	product := seedProduct(t, ts.DB)

	req := jsonRequest("POST", "/api/v1/cart/items", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   1,
	})
	req.Header.Set(middleware.CartIDHeader, "cart-invalid")
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = jsonRequest("POST", "/api/v1/checkout", map[string]string{
		"phone": "+212612345678",
	})
	req.Header.Set(middleware.CartIDHeader, "cart-invalid")
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "full_name")

	// No order was written
	var orderCount int64
	ts.DB.Model(&model.Order{}).Count(&orderCount)
	assert.Equal(t, int64(0), orderCount)
}

func TestCheckout_EmptyCart(t *testing.T) {
	ts := setupIntegrationTest(t)

	req := jsonRequest("POST", "/api/v1/checkout", map[string]string{
		"full_name": "Yasmine El Fassi",
		"phone":     "+212612345678",
		"city":      "Casablanca",
		"address":   "12 Rue des Orangers",
	})
	req.Header.Set(middleware.CartIDHeader, "cart-empty")
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthenticationFlow(t *testing.T) {
	ts := setupIntegrationTest(t)

	// Register
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, jsonRequest("POST", "/api/v1/auth/register", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
		"name":     "Test User",
		"phone":    "+212600112233",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	var registerResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registerResp))
	tokens := registerResp["tokens"].(map[string]interface{})
	accessToken := tokens["access_token"].(string)

	// Login
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, jsonRequest("POST", "/api/v1/auth/login", map[string]string{
		"email":    "test@example.com",
		"password": "password123",
	}))
	assert.Equal(t, http.StatusOK, w.Code)

	// Current user
	req := httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var meResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meResp))
	user := meResp["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, "Test User", user["name"])
}

func TestCheckout_AttachesAuthenticatedUser(t *testing.T) {
	ts := setupIntegrationTest(t)
	product := seedProduct(t, ts.DB)

	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, jsonRequest("POST", "/api/v1/auth/register", map[string]string{
		"email":    "buyer@example.com",
		"password": "password123",
		"name":     "Buyer",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	var registerResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registerResp))
	accessToken := registerResp["tokens"].(map[string]interface{})["access_token"].(string)

	req := jsonRequest("POST", "/api/v1/cart/items", map[string]interface{}{
		"product_id": product.ID,
		"quantity":   1,
	})
	req.Header.Set(middleware.CartIDHeader, "cart-user")
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = jsonRequest("POST", "/api/v1/checkout", map[string]string{
		"full_name": "Buyer",
		"phone":     "+212612345678",
		"city":      "Rabat",
		"address":   "5 Avenue Hassan II",
	})
	req.Header.Set(middleware.CartIDHeader, "cart-user")
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	// The order shows up in the buyer's history
	req = httptest.NewRequest("GET", "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var ordersResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &ordersResp))
	orders := ordersResp["orders"].([]interface{})
	assert.Len(t, orders, 1)
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)

	protectedRoutes := []string{
		"/api/v1/auth/me",
		"/api/v1/orders",
		"/api/v1/admin/orders",
	}

	for _, route := range protectedRoutes {
		t.Run(route, func(t *testing.T) {
			w := httptest.NewRecorder()
			ts.Router.ServeHTTP(w, httptest.NewRequest("GET", route, nil))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAdminRouteForbiddenForUser(t *testing.T) {
	ts := setupIntegrationTest(t)

	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, jsonRequest("POST", "/api/v1/auth/register", map[string]string{
		"email":    "shopper@example.com",
		"password": "password123",
		"name":     "Shopper",
	}))
	require.Equal(t, http.StatusCreated, w.Code)

	var registerResp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registerResp))
	accessToken := registerResp["tokens"].(map[string]interface{})["access_token"].(string)

	req := httptest.NewRequest("GET", "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w = httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
