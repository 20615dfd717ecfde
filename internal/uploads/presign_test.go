package uploads

import (
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ProRenterv1/Renter-sub002/internal/shared/config"
)

func testSigner() *Signer {
	signer := NewSigner(config.StorageConfig{
		GatewayURL:   "http://localhost:9000",
		Bucket:       "prorenter-evidence",
		SigningKey:   "test-signing-key",
		URLExpiry:    15 * time.Minute,
		MaxBytes:     25 * 1024 * 1024,
		MaxVideoByte: 200 * 1024 * 1024,
	})
	signer.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return signer
}

func TestPresignProducesVerifiableURL(t *testing.T) {
	signer := testSigner()

	result, err := signer.Presign("disputes/abc/evidence", "damage.jpg", "image/jpeg", 1024)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Key, "disputes/abc/evidence/"))
	assert.True(t, strings.HasSuffix(result.Key, ".jpg"))
	assert.Equal(t, int64(25*1024*1024), result.MaxBytes)
	assert.Equal(t, "image/jpeg", result.Headers["Content-Type"])
	assert.Equal(t, "pending", result.Headers["x-prorenter-av"])

	parsed, err := url.Parse(result.UploadURL)
	require.NoError(t, err)
	expires, err := strconv.ParseInt(parsed.Query().Get("expires"), 10, 64)
	require.NoError(t, err)

	err = signer.Verify(result.Key, "image/jpeg", 1024, expires, parsed.Query().Get("signature"))
	assert.NoError(t, err)
}

func TestPresignRejectsOversizedFiles(t *testing.T) {
	signer := testSigner()

	_, err := signer.Presign("disputes/abc/evidence", "big.jpg", "image/jpeg", 26*1024*1024)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// videos get the larger cap
	_, err = signer.Presign("disputes/abc/evidence", "clip.mp4", "video/mp4", 100*1024*1024)
	assert.NoError(t, err)

	_, err = signer.Presign("disputes/abc/evidence", "clip.mp4", "video/mp4", 201*1024*1024)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestPresignRejectsUnsupportedContent(t *testing.T) {
	signer := testSigner()

	_, err := signer.Presign("disputes/abc/evidence", "script.sh", "application/x-sh", 100)
	assert.ErrorIs(t, err, ErrUnsupportedContent)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	signer := testSigner()

	result, err := signer.Presign("disputes/abc/evidence", "damage.jpg", "image/jpeg", 1024)
	require.NoError(t, err)

	parsed, _ := url.Parse(result.UploadURL)
	expires, _ := strconv.ParseInt(parsed.Query().Get("expires"), 10, 64)

	// wrong size
	err = signer.Verify(result.Key, "image/jpeg", 2048, expires, parsed.Query().Get("signature"))
	assert.ErrorIs(t, err, ErrBadSignature)

	// expired
	signer.now = func() time.Time {
		return time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	}
	err = signer.Verify(result.Key, "image/jpeg", 1024, expires, parsed.Query().Get("signature"))
	assert.ErrorIs(t, err, ErrBadSignature)
}
