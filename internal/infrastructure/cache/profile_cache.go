// Package cache keeps recently scored borrower profiles in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/internal/domain/port"
	"github.com/bibbank/underwriting/internal/domain/valueobject"
)

const keyPrefix = "underwriting:profile:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient connects and pings Redis.
func NewRedisClient(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

type borrowerDoc struct {
	MonthlyIncome     decimal.Decimal `json:"monthly_income"`
	CreditScore       int             `json:"credit_score"`
	EmploymentStatus  string          `json:"employment_status"`
	ExistingLoanCount int             `json:"existing_loan_count"`
	TotalActiveDebt   decimal.Decimal `json:"total_active_debt"`
}

type savingsDoc struct {
	Balance             decimal.Decimal `json:"balance"`
	TotalInterestEarned decimal.Decimal `json:"total_interest_earned"`
	AccountAgeMonths    int             `json:"account_age_months"`
}

// ProfileCache is a read-through port.ProfileReader. Redis failures are
// logged and the source is queried instead; errors from the source are
// never cached.
type ProfileCache struct {
	source port.ProfileReader
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewProfileCache(source port.ProfileReader, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *ProfileCache {
	return &ProfileCache{source: source, rdb: rdb, ttl: ttl, logger: logger}
}

func (c *ProfileCache) BorrowerProfile(ctx context.Context, borrowerID string) (model.BorrowerProfile, error) {
	key := keyPrefix + "borrower:" + borrowerID

	var doc borrowerDoc
	if c.get(ctx, key, &doc) {
		return model.BorrowerProfile{
			BorrowerID:        borrowerID,
			MonthlyIncome:     doc.MonthlyIncome,
			CreditScore:       doc.CreditScore,
			EmploymentStatus:  valueobject.NewEmploymentStatus(doc.EmploymentStatus),
			ExistingLoanCount: doc.ExistingLoanCount,
			TotalActiveDebt:   doc.TotalActiveDebt,
		}, nil
	}

	p, err := c.source.BorrowerProfile(ctx, borrowerID)
	if err != nil {
		return model.BorrowerProfile{}, err
	}
	c.set(ctx, key, borrowerDoc{
		MonthlyIncome:     p.MonthlyIncome,
		CreditScore:       p.CreditScore,
		EmploymentStatus:  p.EmploymentStatus.String(),
		ExistingLoanCount: p.ExistingLoanCount,
		TotalActiveDebt:   p.TotalActiveDebt,
	})
	return p, nil
}

func (c *ProfileCache) SavingsProfile(ctx context.Context, borrowerID string) (model.SavingsProfile, error) {
	key := keyPrefix + "savings:" + borrowerID

	var doc savingsDoc
	if c.get(ctx, key, &doc) {
		return model.SavingsProfile{
			Balance:             doc.Balance,
			TotalInterestEarned: doc.TotalInterestEarned,
			AccountAgeMonths:    doc.AccountAgeMonths,
		}, nil
	}

	p, err := c.source.SavingsProfile(ctx, borrowerID)
	if err != nil {
		return model.SavingsProfile{}, err
	}
	c.set(ctx, key, savingsDoc(p))
	return p, nil
}

// Invalidate drops both cached profiles of a borrower.
func (c *ProfileCache) Invalidate(ctx context.Context, borrowerID string) error {
	err := c.rdb.Del(ctx, keyPrefix+"borrower:"+borrowerID, keyPrefix+"savings:"+borrowerID).Err()
	if err != nil {
		return fmt.Errorf("invalidate profile cache: %w", err)
	}
	return nil
}

func (c *ProfileCache) get(ctx context.Context, key string, dst any) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "profile cache read failed", "key", key, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		c.logger.WarnContext(ctx, "profile cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *ProfileCache) set(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "profile cache write failed", "key", key, "error", err)
	}
}
