package service

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/internal/app/repository"
	"github.com/selhani/parfumo-backend/internal/ws"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidOrderStatus = errors.New("invalid order status")
)

var validStatuses = map[model.OrderStatus]struct{}{
	model.OrderStatusPending:   {},
	model.OrderStatusConfirmed: {},
	model.OrderStatusShipped:   {},
	model.OrderStatusDelivered: {},
	model.OrderStatusCancelled: {},
}

type OrderService interface {
	GetUserOrders(userID uint) ([]model.Order, error)
	GetUserOrderByID(userID, orderID uint) (*model.Order, error)
	GetOrderByID(orderID uint) (*model.Order, error)
	ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error)
	UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error)
	CountByStatus() (map[model.OrderStatus]int64, error)
	ExportOrders(filter repository.OrderFilter) ([]byte, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	hub       *ws.Hub
}

func NewOrderService(orderRepo repository.OrderRepository, hub *ws.Hub) OrderService {
	return &orderService{
		orderRepo: orderRepo,
		hub:       hub,
	}
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	orders, err := s.orderRepo.FindByUserID(userID)
	if err != nil {
		logger.Error("Failed to fetch user orders", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (s *orderService) GetUserOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to fetch order", err, map[string]interface{}{
			"order_id": orderID,
		})
		return nil, err
	}

	// Guests own no orders; a mismatched owner reads as not-found
	if order.UserID == nil || *order.UserID != userID {
		logger.Warn("Order access denied: ownership mismatch", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *orderService) GetOrderByID(orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) ListOrders(filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.FindWithFilter(filter)
}

func (s *orderService) UpdateOrderStatus(orderID uint, status model.OrderStatus) (*model.Order, error) {
	if _, ok := validStatuses[status]; !ok {
		return nil, ErrInvalidOrderStatus
	}

	logger.Info("Updating order status", map[string]interface{}{
		"order_id":   orderID,
		"new_status": status,
	})

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		logger.Error("Failed to update order status", err, map[string]interface{}{
			"order_id":   orderID,
			"new_status": status,
		})
		return nil, err
	}

	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastOrderStatusChanged(order)
	}

	logger.Info("Order status updated successfully", map[string]interface{}{
		"order_id": orderID,
		"status":   status,
	})
	return order, nil
}

func (s *orderService) CountByStatus() (map[model.OrderStatus]int64, error) {
	return s.orderRepo.CountByStatus()
}

// ExportOrders renders the filtered orders into an xlsx workbook, one row
// per order line so quantities stay visible in spreadsheet tooling.
func (s *orderService) ExportOrders(filter repository.OrderFilter) ([]byte, error) {
	orders, _, err := s.orderRepo.FindWithFilter(filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Orders"
	f.SetSheetName(f.GetSheetName(0), sheet)

	headers := []string{
		"Order Number", "Date", "Status", "Customer", "Phone", "City",
		"Address", "Payment", "Product", "Variant", "SKU", "Quantity",
		"Unit Price", "Line Total", "Subtotal", "Delivery Fee", "Total",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
	}

	row := 2
	for _, order := range orders {
		for _, item := range order.OrderItems {
			values := []interface{}{
				order.OrderNumber,
				order.CreatedAt.Format("2006-01-02 15:04"),
				string(order.Status),
				order.FullName,
				order.Phone,
				order.City,
				order.Address,
				string(order.PaymentMethod),
				item.ProductName,
				item.VariantName,
				item.SKU,
				item.Quantity,
				item.UnitPrice,
				item.UnitPrice * float64(item.Quantity),
				order.Subtotal,
				order.DeliveryFee,
				order.TotalAmount,
			}
			for i, value := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, value)
			}
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		logger.Error("Failed to write order export workbook", err, nil)
		return nil, fmt.Errorf("failed to write export: %w", err)
	}

	logger.Info("Order export generated", map[string]interface{}{
		"order_count": len(orders),
		"rows":        row - 2,
	})
	return buf.Bytes(), nil
}
