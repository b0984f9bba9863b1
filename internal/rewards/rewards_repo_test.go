package rewards

import (
	"context"
	"testing"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/store/storetest"
	"github.com/DhavalSuthar-24/huddle/internal/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T, balance int) (*gorm.DB, RewardsRepository) {
	t.Helper()
	db := storetest.Open(t, &user.User{}, &TokenTransaction{})
	u := &user.User{FullName: "Ada", Email: "ada@example.com", PasswordHash: "x", Role: user.RoleMember, TokenBalance: balance}
	u.ID = "ada"
	require.NoError(t, db.Create(u).Error)
	return db, NewRewardsRepository(db, 3)
}

func TestAwardThenRedeem(t *testing.T) {
	_, repo := setup(t, 0)
	ctx := context.Background()

	reason := "Hosted a tournament"
	_, balance, err := repo.Award(ctx, "ada", 120, &reason, nil)
	require.NoError(t, err)
	assert.Equal(t, 120, balance)

	entry, balance, err := repo.Redeem(ctx, "ada", "free-event")
	require.NoError(t, err)
	assert.Equal(t, 20, balance)
	assert.Equal(t, -100, entry.Amount)
	require.NotNil(t, entry.RewardName)
	assert.Equal(t, "Free Tournament Entry", *entry.RewardName)

	got, err := repo.Balance(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 20, got)

	history, total, err := repo.History(ctx, "ada", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, history, 2)
	assert.Equal(t, -100, history[0].Amount, "newest first")
}

func TestRedeem_InsufficientBalanceWritesNothing(t *testing.T) {
	db, repo := setup(t, 40)
	ctx := context.Background()

	_, _, err := repo.Redeem(ctx, "ada", "water-bottle")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	balance, err := repo.Balance(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, 40, balance)

	var entries int64
	require.NoError(t, db.Model(&TokenTransaction{}).Count(&entries).Error)
	assert.Zero(t, entries)
}

func TestRedeemAndAward_Errors(t *testing.T) {
	_, repo := setup(t, 1000)
	ctx := context.Background()

	_, _, err := repo.Redeem(ctx, "ada", "yacht")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, _, err = repo.Award(ctx, "ada", 0, nil, nil)
	assert.ErrorIs(t, err, common.ErrValidation)

	_, _, err = repo.Award(ctx, "ghost", 10, nil, nil)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
