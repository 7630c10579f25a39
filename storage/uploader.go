package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// OrganizationLogoKey возвращает ключ объекта логотипа: organizations/{id}/logo-{uuid}{ext}.
func OrganizationLogoKey(organizationID int, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("organizations/%d/logo-%s%s", organizationID, uuid.NewString(), ext)
}

// JoinPublicURL склеивает базовый URL бакета и ключ объекта.
func JoinPublicURL(baseURL, key string) string {
	if baseURL == "" || key == "" {
		return ""
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(key, "/")
}
