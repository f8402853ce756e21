package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"organizer/internal/model"
)

var userSort = sortable{
	columns: map[string][]string{
		"id":    {"id"},
		"email": {"email"},
	},
	defaultKey: "id",
	defaultDir: "asc",
}

// UserRepository handles CRUD for users.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context, req PageRequest) (Page[model.User], error) {
	return paginate[model.User](r.db.WithContext(ctx).Model(&model.User{}), req, userSort)
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByTelegramChatID(ctx context.Context, chatID int64) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("telegram_chat_id = ?", chatID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ListWithTelegram returns users who linked a Telegram chat.
func (r *UserRepository) ListWithTelegram(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := r.db.WithContext(ctx).Where("telegram_chat_id IS NOT NULL").Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) Save(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Delete removes the user together with their events, event tag links and contacts.
func (r *UserRepository) Delete(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			"DELETE FROM event_tags WHERE event_id IN (SELECT id FROM event WHERE author_id = ?)", user.ID,
		).Error; err != nil {
			return fmt.Errorf("delete user event tags: %w", err)
		}
		if err := tx.Where("author_id = ?", user.ID).Delete(&model.Event{}).Error; err != nil {
			return fmt.Errorf("delete user events: %w", err)
		}
		if err := tx.Where("author_id = ?", user.ID).Delete(&model.Contact{}).Error; err != nil {
			return fmt.Errorf("delete user contacts: %w", err)
		}
		if err := tx.Delete(&model.User{}, user.ID).Error; err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}
