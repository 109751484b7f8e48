package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/jinzhu/now"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/example/oblako/internal/models"
)

const dashboardCacheKey = "stats:dashboard"

// StatsService aggregates dashboard numbers behind a short-TTL redis cache.
// The cache covers aggregates only; ledger rows are always read fresh from
// Postgres by the redemption engine.
type StatsService struct {
	db    *gorm.DB
	cache *redis.Client
	ttl   time.Duration
}

// NewStatsService constructs a StatsService.
func NewStatsService(db *gorm.DB, cache *redis.Client, ttl time.Duration) *StatsService {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &StatsService{db: db, cache: cache, ttl: ttl}
}

// DashboardStats is the aggregate snapshot served to the admin dashboard.
type DashboardStats struct {
	TotalUsers         int64   `json:"total_users"`
	TotalRestaurants   int64   `json:"total_restaurants"`
	CreditsOutstanding int64   `json:"credits_outstanding"`
	CreditsGranted     int64   `json:"credits_granted"`
	RedemptionsToday   int64   `json:"redemptions_today"`
	GiftEntries        int64   `json:"gift_entries"`
	AverageRating      float64 `json:"average_rating"`
	GeneratedAt        string  `json:"generated_at"`
}

// Dashboard returns cached aggregates, recomputing them on a miss.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var stats DashboardStats
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		} else if err != redis.Nil {
			log.Printf("[Stats] cache read failed: %v", err)
		}
	}

	stats, err := s.compute()
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.ttl).Err(); err != nil {
				log.Printf("[Stats] cache write failed: %v", err)
			}
		}
	}

	return stats, nil
}

func (s *StatsService) compute() (*DashboardStats, error) {
	stats := &DashboardStats{GeneratedAt: time.Now().Format(time.RFC3339)}

	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Restaurant{}).Count(&stats.TotalRestaurants).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.UserPackage{}).
		Select("COALESCE(SUM(remaining_count), 0)").
		Scan(&stats.CreditsOutstanding).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.UserPackage{}).
		Select("COALESCE(SUM(total_count), 0)").
		Scan(&stats.CreditsGranted).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.UserPackage{}).
		Where("is_gift = true").
		Count(&stats.GiftEntries).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.ConsumptionEvent{}).
		Where("consumed_at >= ?", now.BeginningOfDay()).
		Count(&stats.RedemptionsToday).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Rating{}).
		Select("COALESCE(AVG(score), 0)").
		Scan(&stats.AverageRating).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
