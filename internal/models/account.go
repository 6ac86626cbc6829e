package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/code-100-precent/LingQfight/pkg/constants"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameTaken = errors.New("username already exists")
	ErrInvalidRole   = errors.New("invalid role")
)

type Account struct {
	BaseModel
	Username string `json:"username" gorm:"size:64;uniqueIndex"`
	Password string `json:"-" gorm:"size:128"`
	Role     string `json:"role" gorm:"size:20;default:'Player'"`
}

func (a *Account) IsAdmin() bool {
	return a.Role == constants.RoleAdmin
}

// CheckPassword compares against the stored bcrypt hash
func (a *Account) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(password)) == nil
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// NormalizeRole accepts role names case-insensitively and defaults to Player
func NormalizeRole(role string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "", "player":
		return constants.RolePlayer, nil
	case "admin":
		return constants.RoleAdmin, nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidRole, role)
}

func GetAccountByUsername(db *gorm.DB, username string) (*Account, error) {
	var val Account
	result := db.Where("username = ?", username).Take(&val)
	if result.Error != nil {
		return nil, result.Error
	}
	return &val, nil
}

func GetAccountByID(db *gorm.DB, id uint) (*Account, error) {
	var val Account
	result := db.Take(&val, id)
	if result.Error != nil {
		return nil, result.Error
	}
	return &val, nil
}

// CreateAccount inserts the account and its default player in one transaction
func CreateAccount(db *gorm.DB, username, password, role, playerName, createdBy string) (*Account, *Player, error) {
	role, err := NormalizeRole(role)
	if err != nil {
		return nil, nil, err
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, nil, err
	}

	account := &Account{Username: username, Password: hashed, Role: role}
	account.CreateBy = createdBy
	var player *Player

	err = db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Account{}).Where("username = ?", username).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrUsernameTaken
		}
		if err := tx.Create(account).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrUsernameTaken
			}
			return err
		}
		if playerName == "" {
			playerName = username
		}
		player = NewDefaultPlayer(account.ID, playerName)
		player.CreateBy = createdBy
		return tx.Create(player).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return account, player, nil
}

// EnsureAdmin creates the admin account when it does not exist yet and reports whether it did
func EnsureAdmin(db *gorm.DB, username, password string) (bool, error) {
	_, err := GetAccountByUsername(db, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if _, _, err := CreateAccount(db, username, password, constants.RoleAdmin, username, "system"); err != nil {
		return false, err
	}
	return true, nil
}
