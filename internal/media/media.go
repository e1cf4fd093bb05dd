package media

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxUploadSize 单个图片的大小上限
const MaxUploadSize = 5 << 20

var (
	ErrNotImage = errors.New("only image uploads are allowed")
	ErrTooLarge = errors.New("image exceeds the upload size limit")
)

// Uploader stores an uploaded image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
}

// Validate checks the content type and size of an upload.
func Validate(file *multipart.FileHeader) error {
	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		return ErrNotImage
	}
	if file.Size > MaxUploadSize {
		return ErrTooLarge
	}
	return nil
}

// objectName 生成 日期-uuid.扩展名 形式的文件名
func objectName(now time.Time, original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%s-%s%s", now.Format("20060102"), uuid.New().String(), ext)
}
