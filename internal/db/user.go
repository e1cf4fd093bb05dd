package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 定义了后台管理员模型
type User struct {
	gorm.Model
	Username string `gorm:"unique;not null"`
	Password string `gorm:"not null"`
}

// EnsureUser 存在性检查：若提供的用户名与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的用户。
// 返回值表示是否新建了账号。
func EnsureUser(gdb *gorm.DB, username, password string) (bool, error) {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return false, nil
	}

	if gdb == nil {
		return false, errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return false, err
		}

		if err := gdb.Create(&User{Username: trimmedUser, Password: string(hashed)}).Error; err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}
