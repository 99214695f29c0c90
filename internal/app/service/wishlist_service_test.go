package service

import (
	"testing"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWishlistServiceTest(t *testing.T) (WishlistService, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	wishlistRepo := repository.NewWishlistRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	wishlistService := NewWishlistService(wishlistRepo, productRepo)

	user := &model.User{Email: "wisher@example.com", PasswordHash: "hash", Name: "Wisher", Role: model.RoleUser}
	testDB.Create(user)

	brand := &model.Brand{Name: "Aroma", Slug: "aroma"}
	testDB.Create(brand)
	category := &model.Category{Name: "Eau de Parfum", Slug: "eau-de-parfum"}
	testDB.Create(category)
	product := &model.Product{
		Name: "Oud Royal", Slug: "oud-royal", SKU: "OUD-001",
		BrandID: brand.ID, CategoryID: category.ID,
		Price: 120, StockQuantity: 10,
	}
	testDB.Create(product)

	return wishlistService, user, product
}

func TestWishlistService_AddAndGet(t *testing.T) {
	wishlistService, user, product := setupWishlistServiceTest(t)

	item, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)
	assert.NotZero(t, item.ID)

	items, err := wishlistService.GetWishlist(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, product.ID, items[0].ProductID)
}

func TestWishlistService_AddDuplicate(t *testing.T) {
	wishlistService, user, product := setupWishlistServiceTest(t)

	_, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)

	_, err = wishlistService.AddToWishlist(user.ID, product.ID)
	assert.ErrorIs(t, err, ErrWishlistItemExists)
}

func TestWishlistService_AddUnknownProduct(t *testing.T) {
	wishlistService, user, _ := setupWishlistServiceTest(t)

	_, err := wishlistService.AddToWishlist(user.ID, 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestWishlistService_Remove(t *testing.T) {
	wishlistService, user, product := setupWishlistServiceTest(t)

	_, err := wishlistService.AddToWishlist(user.ID, product.ID)
	require.NoError(t, err)

	require.NoError(t, wishlistService.RemoveFromWishlist(user.ID, product.ID))

	items, err := wishlistService.GetWishlist(user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	err = wishlistService.RemoveFromWishlist(user.ID, product.ID)
	assert.ErrorIs(t, err, ErrWishlistItemNotFound)
}
