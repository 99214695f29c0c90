package service

import (
	"bytes"
	"testing"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (OrderService, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	orderRepo := repository.NewOrderRepository(testDB)
	orderService := NewOrderService(orderRepo, nil)

	user := &model.User{
		Email:        "customer@example.com",
		PasswordHash: "hash",
		Name:         "Customer",
		Role:         model.RoleUser,
	}
	testDB.Create(user)

	return orderService, testDB, user
}

func createTestOrder(t *testing.T, testDB *gorm.DB, userID *uint, orderNumber string) *model.Order {
	order := &model.Order{
		OrderNumber: orderNumber,
		UserID:      userID,
		FullName:    "Yasmine El Fassi",
		Phone:       "+212612345678",
		City:        "Casablanca",
		Address:     "12 Rue des Orangers",
		Subtotal:    240,
		DeliveryFee: 30,
		TotalAmount: 270,
		Status:      model.OrderStatusPending,
		OrderItems: []model.OrderItem{
			{
				ProductID:   1,
				Quantity:    2,
				UnitPrice:   120,
				ProductName: "Oud Royal",
				SKU:         "OUD-001",
			},
		},
	}
	require.NoError(t, testDB.Create(order).Error)
	return order
}

func TestOrderService_GetUserOrders(t *testing.T) {
	orderService, testDB, user := setupOrderServiceTest(t)

	createTestOrder(t, testDB, &user.ID, "ORD-001")
	createTestOrder(t, testDB, &user.ID, "ORD-002")
	createTestOrder(t, testDB, nil, "ORD-003") // guest order

	orders, err := orderService.GetUserOrders(user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
}

func TestOrderService_GetUserOrderByID_OwnershipMismatch(t *testing.T) {
	orderService, testDB, user := setupOrderServiceTest(t)

	other := &model.User{
		Email:        "other@example.com",
		PasswordHash: "hash",
		Name:         "Other",
		Role:         model.RoleUser,
	}
	testDB.Create(other)

	order := createTestOrder(t, testDB, &other.ID, "ORD-001")

	// Someone else's order reads as not-found
	result, err := orderService.GetUserOrderByID(user.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, result)
}

func TestOrderService_GetUserOrderByID_GuestOrderHidden(t *testing.T) {
	orderService, testDB, user := setupOrderServiceTest(t)

	order := createTestOrder(t, testDB, nil, "ORD-001")

	_, err := orderService.GetUserOrderByID(user.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_UpdateOrderStatus_Success(t *testing.T) {
	orderService, testDB, user := setupOrderServiceTest(t)

	order := createTestOrder(t, testDB, &user.ID, "ORD-001")

	updated, err := orderService.UpdateOrderStatus(order.ID, model.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusConfirmed, updated.Status)
}

func TestOrderService_UpdateOrderStatus_InvalidStatus(t *testing.T) {
	orderService, testDB, user := setupOrderServiceTest(t)

	order := createTestOrder(t, testDB, &user.ID, "ORD-001")

	_, err := orderService.UpdateOrderStatus(order.ID, model.OrderStatus("teleported"))
	assert.ErrorIs(t, err, ErrInvalidOrderStatus)
}

func TestOrderService_UpdateOrderStatus_NotFound(t *testing.T) {
	orderService, _, _ := setupOrderServiceTest(t)

	_, err := orderService.UpdateOrderStatus(9999, model.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ListOrders_FilterByStatus(t *testing.T) {
	orderService, testDB, user := setupOrderServiceTest(t)

	createTestOrder(t, testDB, &user.ID, "ORD-001")
	shipped := createTestOrder(t, testDB, &user.ID, "ORD-002")
	testDB.Model(shipped).Update("status", model.OrderStatusShipped)

	status := model.OrderStatusShipped
	orders, total, err := orderService.ListOrders(repository.OrderFilter{Status: &status, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, orders, 1)
	assert.Equal(t, "ORD-002", orders[0].OrderNumber)
}

func TestOrderService_CountByStatus(t *testing.T) {
	orderService, testDB, user := setupOrderServiceTest(t)

	createTestOrder(t, testDB, &user.ID, "ORD-001")
	createTestOrder(t, testDB, &user.ID, "ORD-002")
	delivered := createTestOrder(t, testDB, &user.ID, "ORD-003")
	testDB.Model(delivered).Update("status", model.OrderStatusDelivered)

	counts, err := orderService.CountByStatus()
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[model.OrderStatusPending])
	assert.Equal(t, int64(1), counts[model.OrderStatusDelivered])
}

func TestOrderService_ExportOrders(t *testing.T) {
	orderService, testDB, user := setupOrderServiceTest(t)

	createTestOrder(t, testDB, &user.ID, "ORD-001")

	data, err := orderService.ExportOrders(repository.OrderFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2) // header + one order line
	assert.Contains(t, rows[1], "ORD-001")
	assert.Contains(t, rows[1], "Oud Royal")
}
