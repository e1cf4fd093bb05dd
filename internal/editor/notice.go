package editor

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kalagasite/internal/store"
)

// NoticeTTL 是提示条自动消失的时间
const NoticeTTL = 3 * time.Second

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient banner shown to the admin.
type Notice struct {
	Kind      NoticeKind `json:"type"`
	Message   string     `json:"text"`
	ExpiresAt time.Time  `json:"expiresAt"`
}

func (n *Notice) expired(now time.Time) bool {
	return n == nil || !now.Before(n.ExpiresAt)
}

func savedMessage(title string) string {
	return fmt.Sprintf("%s content updated successfully!", title)
}

func saveFailedMessage(title string, err error) string {
	if errors.Is(err, store.ErrPermission) {
		return "Access denied. Please check your authentication status and permissions."
	}
	return fmt.Sprintf("Error updating %s content", strings.ToLower(title))
}

func loadFailedMessage(title string, err error) string {
	switch {
	case errors.Is(err, store.ErrPermission):
		return "Access denied. Please check your authentication status and permissions."
	case store.IsUnavailable(err):
		return "Unable to connect to the database. Please check your internet connection."
	}
	return fmt.Sprintf("Error fetching %s content", strings.ToLower(title))
}
