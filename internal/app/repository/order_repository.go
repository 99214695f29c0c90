package repository

import (
	"time"

	"github.com/selhani/parfumo-backend/internal/app/model"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"gorm.io/gorm"
)

type OrderFilter struct {
	Status   *model.OrderStatus
	Phone    string
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}

type OrderRepository interface {
	FindByID(id uint) (*model.Order, error)
	FindByOrderNumber(orderNumber string) (*model.Order, error)
	FindByUserID(userID uint) ([]model.Order, error)
	FindWithFilter(filter OrderFilter) ([]model.Order, int64, error)
	UpdateStatus(id uint, status model.OrderStatus) error
	CountByStatus() (map[model.OrderStatus]int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) baseQuery() *gorm.DB {
	return r.db.Model(&model.Order{}).
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Preload("User")
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	if err := r.baseQuery().First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByOrderNumber(orderNumber string) (*model.Order, error) {
	var order model.Order
	if err := r.baseQuery().Where("order_number = ?", orderNumber).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUserID(userID uint) ([]model.Order, error) {
	logger.Debug("Finding orders by user in database", map[string]interface{}{
		"user_id": userID,
	})

	var orders []model.Order
	if err := r.baseQuery().
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders by user in database", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) FindWithFilter(filter OrderFilter) ([]model.Order, int64, error) {
	logger.Debug("Finding orders with filter", map[string]interface{}{
		"status": filter.Status,
		"phone":  filter.Phone,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})

	query := r.db.Model(&model.Order{})

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Phone != "" {
		query = query.Where("phone = ?", filter.Phone)
	}
	if filter.DateFrom != nil {
		query = query.Where("created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("created_at < ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count orders with filter", err, nil)
		return nil, 0, err
	}

	query = query.
		Preload("OrderItems").
		Preload("User").
		Order("created_at DESC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var orders []model.Order
	if err := query.Find(&orders).Error; err != nil {
		logger.Error("Failed to find orders with filter", err, nil)
		return nil, 0, err
	}

	logger.Debug("Orders found with filter", map[string]interface{}{
		"count": len(orders),
		"total": total,
	})
	return orders, total, nil
}

func (r *orderRepository) UpdateStatus(id uint, status model.OrderStatus) error {
	result := r.db.Model(&model.Order{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		logger.Error("Failed to update order status in database", result.Error, map[string]interface{}{
			"order_id": id,
			"status":   status,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *orderRepository) CountByStatus() (map[model.OrderStatus]int64, error) {
	type statusCount struct {
		Status model.OrderStatus
		Count  int64
	}

	var rows []statusCount
	if err := r.db.Model(&model.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		logger.Error("Failed to count orders by status", err, nil)
		return nil, err
	}

	counts := make(map[model.OrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
