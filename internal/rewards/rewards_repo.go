package rewards

import (
	"context"
	"fmt"
	"time"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/store"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"gorm.io/gorm"
)

type RewardsRepository interface {
	Balance(ctx context.Context, userID string) (int, error)
	History(ctx context.Context, userID string, page, pageSize int) ([]TokenTransaction, int64, error)
	// Redeem debits the reward's cost. A balance that would go negative fails with
	// common.ErrInsufficientBalance and nothing is written.
	Redeem(ctx context.Context, userID, rewardID string) (*TokenTransaction, int, error)
	Award(ctx context.Context, userID string, amount int, reason, eventName *string) (*TokenTransaction, int, error)
}

type rewardsRepository struct {
	db          *gorm.DB
	maxAttempts int
}

func NewRewardsRepository(db *gorm.DB, maxAttempts int) RewardsRepository {
	return &rewardsRepository{db: db, maxAttempts: maxAttempts}
}

func (r *rewardsRepository) Balance(ctx context.Context, userID string) (int, error) {
	u, err := user.Load(r.db.WithContext(ctx), userID)
	if err != nil {
		return 0, store.Wrap(err)
	}
	return u.TokenBalance, nil
}

func (r *rewardsRepository) History(ctx context.Context, userID string, page, pageSize int) ([]TokenTransaction, int64, error) {
	var total int64
	history := []TokenTransaction{}

	query := r.db.WithContext(ctx).Model(&TokenTransaction{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, store.Wrap(err)
	}
	err := query.Order("date DESC").Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&history).Error
	if err != nil {
		return nil, 0, store.Wrap(err)
	}
	return history, total, nil
}

func (r *rewardsRepository) Redeem(ctx context.Context, userID, rewardID string) (*TokenTransaction, int, error) {
	reward, ok := LookupReward(rewardID)
	if !ok {
		return nil, 0, fmt.Errorf("%w: reward %s", common.ErrNotFound, rewardID)
	}
	name := reward.Name
	reason := "Redeemed " + reward.Name
	return r.post(ctx, userID, -reward.Cost, &TokenTransaction{RewardName: &name, Reason: &reason})
}

func (r *rewardsRepository) Award(ctx context.Context, userID string, amount int, reason, eventName *string) (*TokenTransaction, int, error) {
	if amount <= 0 {
		return nil, 0, fmt.Errorf("%w: award amount must be positive", common.ErrValidation)
	}
	return r.post(ctx, userID, amount, &TokenTransaction{Reason: reason, EventName: eventName})
}

// post applies amount to the user's balance and appends the ledger entry in one transaction.
func (r *rewardsRepository) post(ctx context.Context, userID string, amount int, entry *TokenTransaction) (*TokenTransaction, int, error) {
	var balance int
	err := store.Atomic(ctx, r.db, r.maxAttempts, func(tx *gorm.DB) error {
		u, err := user.Load(tx, userID)
		if err != nil {
			return err
		}
		if u.TokenBalance+amount < 0 {
			return fmt.Errorf("%w: balance %d, cost %d", common.ErrInsufficientBalance, u.TokenBalance, -amount)
		}
		balance = u.TokenBalance + amount
		if err := user.Save(tx, u, map[string]interface{}{"token_balance": balance}); err != nil {
			return err
		}

		entry.ID = ""
		entry.UserID = userID
		entry.Amount = amount
		entry.Date = time.Now().UTC()
		return tx.Create(entry).Error
	})
	if err != nil {
		return nil, 0, err
	}
	return entry, balance, nil
}
