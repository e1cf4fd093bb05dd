package auth

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kalagasite/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCredentialsVerify(t *testing.T) {
	dsn := fmt.Sprintf("file:credentials-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if _, err := db.EnsureUser(gdb, "admin", "s3cret-pass"); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	creds := NewCredentials(gdb)

	user, err := creds.Verify("admin", "s3cret-pass")
	if err != nil {
		t.Fatalf("expected valid credentials, got %v", err)
	}
	if user.Username != "admin" {
		t.Fatalf("unexpected user %q", user.Username)
	}

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"nobody", "s3cret-pass"},
		{"", ""},
	} {
		if _, err := creds.Verify(tc.user, tc.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for %q/%q, got %v", tc.user, tc.pass, err)
		}
	}
}
