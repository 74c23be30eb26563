package model

import "errors"

// Upload constraints
const (
	MaxImageSizeBytes  = 10 << 20 // 10 MiB
	MaxAvatarSizeBytes = 5 << 20  // 5 MiB

	AvatarWidth  = 200
	AvatarHeight = 200

	PostImageFolder = "posts"
	AvatarFolder    = "avatars"
	AvatarExt       = ".jpg"

	ContentTypeJPEG = "image/jpeg"

	ImageCacheControl  = "public, max-age=31536000, immutable"
	AvatarCacheControl = "public, max-age=86400"
)

// UploadResult is returned after a successful upload.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// IsAllowedImageType reports whether the content type may be uploaded.
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// ExtensionForImageType returns the file extension for an allowed content
// type, defaulting to ".jpg".
func ExtensionForImageType(contentType string) string {
	if ext, ok := allowedImageTypes[contentType]; ok {
		return ext
	}
	return ".jpg"
}

// Media errors
var (
	ErrFileTooLarge     = errors.New("file exceeds maximum size")
	ErrInvalidImageType = errors.New("unsupported image type")
)
