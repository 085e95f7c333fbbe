package view

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	repo "anadara.com/exportmarket/internal/modules/product/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type ViewService interface {
	RecordView(ctx context.Context, productID uuid.UUID, viewerKey string) error
	StartViewSyncWorker(ctx context.Context, interval time.Duration)
}

type viewService struct {
	redisClient *redis.Client
	productRepo repo.ProductRepository
}

func NewViewService(redisClient *redis.Client, productRepo repo.ProductRepository) ViewService {
	return &viewService{
		redisClient: redisClient,
		productRepo: productRepo,
	}
}

// RecordView counts at most one view per viewer per hour; counters accumulate
// in redis and reach the products table through the sync worker.
func (s *viewService) RecordView(ctx context.Context, productID uuid.UUID, viewerKey string) error {
	if s.redisClient == nil {
		return s.productRepo.AddViews(ctx, productID, 1)
	}

	dedupeKey := fmt.Sprintf("product:viewer:%s:%s", productID, viewerKey)
	set, err := s.redisClient.SetNX(ctx, dedupeKey, "viewed", time.Hour).Result()
	if err != nil {
		return fmt.Errorf("failed to check viewer dedupe: %w", err)
	}
	if !set {
		return nil
	}

	viewKey := fmt.Sprintf("product:views:%s", productID)
	if _, err := s.redisClient.Incr(ctx, viewKey).Result(); err != nil {
		return fmt.Errorf("failed to increment view: %w", err)
	}

	if _, err := s.redisClient.SAdd(ctx, "pending:product_views", productID.String()).Result(); err != nil {
		return fmt.Errorf("failed to mark view pending: %w", err)
	}

	return nil
}

func (s *viewService) syncViewsToDB(ctx context.Context) {
	pendingKey := "pending:product_views"

	productIDs, err := s.redisClient.SMembers(ctx, pendingKey).Result()
	if err != nil {
		log.Printf("error getting pending product views: %v", err)
		return
	}
	if len(productIDs) == 0 {
		return
	}

	for _, productIDStr := range productIDs {
		productID, err := uuid.Parse(productIDStr)
		if err != nil {
			log.Printf("invalid product id %q in pending views: %v", productIDStr, err)
			continue
		}

		viewKey := fmt.Sprintf("product:views:%s", productID)
		// GetDel so a crash between read and write drops at most one batch
		// instead of double counting.
		viewCountStr, err := s.redisClient.GetDel(ctx, viewKey).Result()
		if err != nil {
			if err != redis.Nil {
				log.Printf("error getting view count for product %s: %v", productID, err)
			}
			continue
		}

		viewCount, err := strconv.Atoi(viewCountStr)
		if err != nil || viewCount <= 0 {
			continue
		}

		if err := s.productRepo.AddViews(ctx, productID, viewCount); err != nil {
			log.Printf("failed to flush views for product %s: %v", productID, err)
		}
	}

	if _, err := s.redisClient.Del(ctx, pendingKey).Result(); err != nil {
		log.Printf("failed to clear pending view set: %v", err)
	}
}

func (s *viewService) StartViewSyncWorker(ctx context.Context, interval time.Duration) {
	if s.redisClient == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.syncViewsToDB(ctx)
		case <-ctx.Done():
			return
		}
	}
}
