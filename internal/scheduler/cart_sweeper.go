package scheduler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/selhani/parfumo-backend/pkg/logger"
	"github.com/selhani/parfumo-backend/pkg/redis"
)

// CartSweeper prunes cart slots that only hold an empty item list.
// Abandoned carts with items are left to their TTL so a returning
// customer still finds them.
type CartSweeper struct {
	cron *cron.Cron
}

func NewCartSweeper() *CartSweeper {
	return &CartSweeper{
		cron: cron.New(),
	}
}

func (s *CartSweeper) Start() error {
	// Daily at 04:00, when traffic is lowest
	_, err := s.cron.AddFunc("0 4 * * *", func() {
		if err := s.Sweep(context.Background()); err != nil {
			logger.Error("Cart sweep failed", err)
		}
	})
	if err != nil {
		logger.Error("Failed to schedule cart sweep", err)
		return err
	}

	s.cron.Start()
	logger.Info("Cart sweeper started (daily at 4:00 AM)", nil)

	return nil
}

func (s *CartSweeper) Stop() {
	s.cron.Stop()
	logger.Info("Cart sweeper stopped", nil)
}

// Sweep scans all cart slots and deletes the ones holding no items.
func (s *CartSweeper) Sweep(ctx context.Context) error {
	start := time.Now()

	keys, err := redis.ScanKeys(ctx, "cart:*")
	if err != nil {
		return err
	}

	var empty []string
	for _, key := range keys {
		data, err := redis.GetBytes(ctx, key)
		if err != nil {
			// Slot expired between scan and read
			continue
		}

		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			logger.Warn("Skipping unreadable cart slot", map[string]interface{}{
				"key": key,
			})
			continue
		}
		if len(items) == 0 {
			empty = append(empty, key)
		}
	}

	if len(empty) > 0 {
		if err := redis.DeleteKeys(ctx, empty...); err != nil {
			return err
		}
	}

	logger.Info("Cart sweep completed", map[string]interface{}{
		"scanned":  len(keys),
		"deleted":  len(empty),
		"duration": time.Since(start).String(),
	})

	return nil
}
