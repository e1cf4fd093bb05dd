package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kalagasite/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials 表示用户名或密码错误
var ErrInvalidCredentials = errors.New("invalid username or password")

// Credentials verifies admin logins against the users table.
type Credentials struct {
	db *gorm.DB
}

func NewCredentials(gdb *gorm.DB) *Credentials {
	return &Credentials{db: gdb}
}

// Verify returns the user when password matches the stored bcrypt hash.
func (c *Credentials) Verify(username, password string) (*db.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user db.User
	if err := c.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
