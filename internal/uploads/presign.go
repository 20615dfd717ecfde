package uploads

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
)

var (
	ErrFileTooLarge       = errors.New("file exceeds the maximum allowed size")
	ErrUnsupportedContent = errors.New("unsupported content type")
	ErrBadSignature       = errors.New("upload signature is invalid or expired")
)

// allowedContentTypes maps accepted MIME types to their size class.
var allowedContentTypes = map[string]bool{
	"image/jpeg":      false,
	"image/png":       false,
	"image/heic":      false,
	"image/webp":      false,
	"application/pdf": false,
	"video/mp4":       true, // video class, larger cap
	"video/quicktime": true,
}

// PresignResult is everything a client needs to PUT the file directly to
// the storage gateway.
type PresignResult struct {
	Key       string            `json:"key"`
	UploadURL string            `json:"upload_url"`
	Headers   map[string]string `json:"headers"`
	MaxBytes  int64             `json:"max_bytes"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Signer issues HMAC-signed upload URLs for the storage gateway. The
// gateway shares the signing key and verifies the same canonical string
// before accepting a PUT.
type Signer struct {
	gatewayURL string
	bucket     string
	key        []byte
	urlExpiry  time.Duration
	maxBytes   int64
	maxVideo   int64

	now func() time.Time
}

func NewSigner(cfg config.StorageConfig) *Signer {
	return &Signer{
		gatewayURL: strings.TrimSuffix(cfg.GatewayURL, "/"),
		bucket:     cfg.Bucket,
		key:        []byte(cfg.SigningKey),
		urlExpiry:  cfg.URLExpiry,
		maxBytes:   cfg.MaxBytes,
		maxVideo:   cfg.MaxVideoByte,
		now:        time.Now,
	}
}

// Presign validates the declared upload and returns a signed URL for it.
// The prefix scopes the object key, e.g. "disputes/<id>/evidence".
func (s *Signer) Presign(prefix, filename, contentType string, sizeBytes int64) (*PresignResult, error) {
	isVideo, ok := allowedContentTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedContent
	}

	limit := s.maxBytes
	if isVideo {
		limit = s.maxVideo
	}
	if sizeBytes <= 0 || sizeBytes > limit {
		return nil, ErrFileTooLarge
	}

	ext := path.Ext(filename)
	key := fmt.Sprintf("%s/%s%s", strings.Trim(prefix, "/"), uuid.NewString(), ext)

	expiresAt := s.now().Add(s.urlExpiry)
	signature := s.sign(key, contentType, sizeBytes, expiresAt.Unix())

	values := url.Values{}
	values.Set("expires", strconv.FormatInt(expiresAt.Unix(), 10))
	values.Set("signature", signature)

	uploadURL := fmt.Sprintf("%s/%s/%s?%s", s.gatewayURL, s.bucket, key, values.Encode())

	return &PresignResult{
		Key:       key,
		UploadURL: uploadURL,
		Headers: map[string]string{
			"Content-Type":   contentType,
			"Content-Length": strconv.FormatInt(sizeBytes, 10),
			"x-prorenter-av": "pending",
		},
		MaxBytes:  limit,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks a signature produced by Presign. The gateway calls this
// (or reimplements it) before accepting the object.
func (s *Signer) Verify(key, contentType string, sizeBytes, expiresUnix int64, signature string) error {
	if s.now().Unix() > expiresUnix {
		return ErrBadSignature
	}

	expected := s.sign(key, contentType, sizeBytes, expiresUnix)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrBadSignature
	}
	return nil
}

func (s *Signer) sign(key, contentType string, sizeBytes, expiresUnix int64) string {
	canonical := strings.Join([]string{
		"PUT",
		s.bucket,
		key,
		contentType,
		strconv.FormatInt(sizeBytes, 10),
		strconv.FormatInt(expiresUnix, 10),
	}, "\n")

	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}
