package user

import (
	"context"
	"fmt"

	"github.com/DhavalSuthar-24/huddle/internal/common"
	"github.com/DhavalSuthar-24/huddle/internal/store"
	"gorm.io/gorm"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []string) ([]User, error)
	// UpdateUser re-reads the user and applies mutate inside a retried transaction.
	UpdateUser(ctx context.Context, id string, mutate func(u *User) (map[string]interface{}, error)) (*User, error)
	Follow(ctx context.Context, followerID, targetID string) error
	Unfollow(ctx context.Context, followerID, targetID string) error
}

type userRepository struct {
	db          *gorm.DB
	maxAttempts int
}

func NewUserRepository(db *gorm.DB, maxAttempts int) UserRepository {
	return &userRepository{db: db, maxAttempts: maxAttempts}
}

func (r *userRepository) CreateUser(ctx context.Context, u *User) error {
	if u.Role == "" {
		u.Role = RoleMember
	}
	return store.Wrap(r.db.WithContext(ctx).Create(u).Error)
}

func (r *userRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrValidation)
	}
	u, err := Load(r.db.WithContext(ctx), id)
	if err != nil {
		return nil, store.Wrap(err)
	}
	return u, nil
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, store.Wrap(err)
	}
	return &u, nil
}

func (r *userRepository) GetUsersByIDs(ctx context.Context, ids []string) ([]User, error) {
	users := []User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("full_name ASC").Find(&users).Error; err != nil {
		return nil, store.Wrap(err)
	}
	return users, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, id string, mutate func(u *User) (map[string]interface{}, error)) (*User, error) {
	var updated *User
	err := store.Atomic(ctx, r.db, r.maxAttempts, func(tx *gorm.DB) error {
		u, err := Load(tx, id)
		if err != nil {
			return err
		}
		updates, err := mutate(u)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := Save(tx, u, updates); err != nil {
				return err
			}
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Follow adds targetID to the follower's Following set and followerID to the
// target's Followers set in one transaction. Following twice is a no-op.
func (r *userRepository) Follow(ctx context.Context, followerID, targetID string) error {
	return r.follow(ctx, followerID, targetID, true)
}

func (r *userRepository) Unfollow(ctx context.Context, followerID, targetID string) error {
	return r.follow(ctx, followerID, targetID, false)
}

func (r *userRepository) follow(ctx context.Context, followerID, targetID string, add bool) error {
	if followerID == "" || targetID == "" {
		return fmt.Errorf("%w: both user ids are required", common.ErrValidation)
	}
	if followerID == targetID {
		return fmt.Errorf("%w: users cannot follow themselves", common.ErrValidation)
	}

	return store.Atomic(ctx, r.db, r.maxAttempts, func(tx *gorm.DB) error {
		follower, err := Load(tx, followerID)
		if err != nil {
			return err
		}
		target, err := Load(tx, targetID)
		if err != nil {
			return err
		}

		var followingChanged, followersChanged bool
		if add {
			follower.Following, followingChanged = follower.Following.Add(targetID)
			target.Followers, followersChanged = target.Followers.Add(followerID)
		} else {
			follower.Following, followingChanged = follower.Following.Remove(targetID)
			target.Followers, followersChanged = target.Followers.Remove(followerID)
		}

		writes := []struct {
			u       *User
			changed bool
			updates map[string]interface{}
		}{
			{follower, followingChanged, map[string]interface{}{"following": follower.Following}},
			{target, followersChanged, map[string]interface{}{"followers": target.Followers}},
		}
		// lock the pair in id order so mutual follows cannot deadlock
		if target.ID < follower.ID {
			writes[0], writes[1] = writes[1], writes[0]
		}
		for _, w := range writes {
			if !w.changed {
				continue
			}
			if err := Save(tx, w.u, w.updates); err != nil {
				return err
			}
		}
		return nil
	})
}
