package media

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalUploader writes images under a directory served as static files.
type LocalUploader struct {
	dir     string
	urlPath string
	now     func() time.Time
}

func NewLocalUploader(dir, urlPath string) *LocalUploader {
	return &LocalUploader{
		dir:     dir,
		urlPath: "/" + strings.Trim(urlPath, "/"),
		now:     time.Now,
	}
}

func (u *LocalUploader) Upload(_ context.Context, file *multipart.FileHeader) (string, error) {
	if err := Validate(file); err != nil {
		return "", err
	}
	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := objectName(u.now(), file.Filename)

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(u.dir, name))
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return u.urlPath + "/" + name, nil
}
