package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"organizer/internal/model"
	"organizer/internal/repository"
)

const (
	minPasswordLength = 6
	// bcrypt ignores input past 72 bytes.
	maxPasswordLength = 72
)

// UserUpdate carries the editable profile fields. An empty Password keeps the current one.
type UserUpdate struct {
	Email          string
	Password       string
	TelegramChatID *int64
}

// UserService manages accounts and credentials.
type UserService struct {
	repo *repository.UserRepository
	cost int
}

func NewUserService(repo *repository.UserRepository) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

// WithCost returns a copy hashing with the given bcrypt cost.
func (s *UserService) WithCost(cost int) *UserService {
	clone := *s
	clone.cost = cost
	return &clone
}

func (s *UserService) List(ctx context.Context, req repository.PageRequest) (repository.Page[model.User], error) {
	return s.repo.List(ctx, req)
}

func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookup(err)
	}
	return user, nil
}

// CanManage reports whether actor may view, edit or delete target: admins manage everyone,
// users only themselves.
func (s *UserService) CanManage(actor, target *model.User) bool {
	if actor == nil || target == nil {
		return false
	}
	return actor.IsAdmin() || actor.ID == target.ID
}

// Register creates a ROLE_USER account.
func (s *UserService) Register(ctx context.Context, email, password string) (*model.User, error) {
	user := &model.User{Email: normalizeEmail(email)}
	user.Grant(model.RoleUser)

	errs := model.ValidateUser(user)
	errs = append(errs, validatePassword(password, true)...)
	if len(errs) > 0 {
		return nil, errs
	}
	if err := s.ensureEmailFree(ctx, user.Email, 0); err != nil {
		return nil, err
	}

	hash, err := s.hash(password)
	if err != nil {
		return nil, err
	}
	user.Password = hash
	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies upd to user.
func (s *UserService) Update(ctx context.Context, user *model.User, upd UserUpdate) error {
	changed := *user
	changed.Email = normalizeEmail(upd.Email)
	changed.TelegramChatID = upd.TelegramChatID

	errs := model.ValidateUser(&changed)
	errs = append(errs, validatePassword(upd.Password, false)...)
	if len(errs) > 0 {
		return errs
	}
	if err := s.ensureEmailFree(ctx, changed.Email, user.ID); err != nil {
		return err
	}

	if upd.Password != "" {
		hash, err := s.hash(upd.Password)
		if err != nil {
			return err
		}
		changed.Password = hash
	}
	if err := s.save(ctx, &changed); err != nil {
		return err
	}
	*user = changed
	return nil
}

// Delete removes target with everything it authored.
func (s *UserService) Delete(ctx context.Context, actor, target *model.User) error {
	if !s.CanManage(actor, target) {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, target)
}

// Authenticate checks credentials. Unknown emails and wrong passwords are indistinguishable.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CreateAdmin creates an administrator, or promotes and re-keys an existing account with that email.
// The boolean reports whether a new account was created.
func (s *UserService) CreateAdmin(ctx context.Context, email, password string) (*model.User, bool, error) {
	email = normalizeEmail(email)
	if errs := validatePassword(password, true); len(errs) > 0 {
		return nil, false, errs
	}

	user, err := s.repo.FindByEmail(ctx, email)
	created := false
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = &model.User{Email: email}
		created = true
	case err != nil:
		return nil, false, err
	}
	if errs := model.ValidateUser(user); len(errs) > 0 {
		return nil, false, errs
	}

	user.Grant(model.RoleUser)
	user.Grant(model.RoleAdmin)
	if user.Password, err = s.hash(password); err != nil {
		return nil, false, err
	}
	if err := s.save(ctx, user); err != nil {
		return nil, false, err
	}
	return user, created, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != selfID:
		return ErrEmailTaken
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return nil
}

func (s *UserService) save(ctx context.Context, user *model.User) error {
	if err := s.repo.Save(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *UserService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func validatePassword(password string, required bool) model.FieldErrors {
	var errs model.FieldErrors
	switch {
	case password == "" && required:
		errs.Add("password", "This value should not be blank.")
	case password == "":
	case len(password) < minPasswordLength:
		errs.Add("password", fmt.Sprintf("This value is too short. It should have %d characters or more.", minPasswordLength))
	case len(password) > maxPasswordLength:
		errs.Add("password", fmt.Sprintf("This value is too long. It should have %d characters or less.", maxPasswordLength))
	}
	return errs
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
