package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"photo-board/helpers"
	"photo-board/models"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gabriel-vasile/mimetype"
	"google.golang.org/api/googleapi"
)

var contentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

// ContentType maps an image filename to its MIME type by extension.
func ContentType(filename string) (string, error) {
	ct, ok := contentTypes[helpers.Extension(filename)]
	if !ok {
		return "", fmt.Errorf("%w: %q", models.ErrUnsupportedImageType, filename)
	}
	return ct, nil
}

// StoredName builds the collision-safe object name for an uploaded file.
func StoredName(id, originalFilename string) string {
	return id + "." + helpers.SecureFilename(originalFilename)
}

// Uploader names, types and writes uploaded images, retrying transient
// store failures with exponential backoff.
type Uploader struct {
	store  Store
	policy models.RetryPolicy
	log    *slog.Logger
	newID  func() string
}

func NewUploader(store Store, policy models.RetryPolicy, log *slog.Logger) *Uploader {
	return &Uploader{store: store, policy: policy, log: log, newID: helpers.GenerateID}
}

// Upload writes the whole stream under a fresh name and returns that name.
// The stream is rewound before every attempt.
func (u *Uploader) Upload(ctx context.Context, r io.ReadSeeker, originalFilename string) (string, error) {
	name := StoredName(u.newID(), originalFilename)
	contentType, err := ContentType(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrUpload, err)
	}
	u.checkContent(r, name, contentType)

	attempt := 0
	operation := func() error {
		attempt++
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(fmt.Errorf("rewinding upload: %w", err))
		}
		err := u.store.Put(ctx, name, r, contentType, true)
		if err == nil {
			return nil
		}
		if !transient(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		u.log.Warn("Blob write failed, retrying",
			"name", name, "attempt", attempt, "wait", wait, "error", err)
	}

	if err := backoff.RetryNotify(operation, u.backOff(ctx), notify); err != nil {
		return "", fmt.Errorf("%w: %s after %d attempt(s): %w", models.ErrUpload, name, attempt, err)
	}
	u.log.Debug("Blob written", "name", name, "content_type", contentType, "attempts", attempt)
	return name, nil
}

// transient reports whether a failed write is worth another attempt. Client
// errors from the storage API won't change on retry, except timeouts and
// rate limiting.
func transient(err error) bool {
	if errors.Is(err, models.ErrInvalidBlobName) {
		return false
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code >= 400 && apiErr.Code < 500 {
		return apiErr.Code == http.StatusRequestTimeout || apiErr.Code == http.StatusTooManyRequests
	}
	return true
}

func (u *Uploader) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = u.policy.InitialInterval
	b.Multiplier = u.policy.BackoffFactor
	b.MaxInterval = u.policy.MaxInterval
	b.MaxElapsedTime = u.policy.MaxElapsed

	retries := u.policy.MaxAttempts - 1
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// checkContent only logs: the extension decides the stored content type.
func (u *Uploader) checkContent(r io.ReadSeeker, name, contentType string) {
	detected, err := mimetype.DetectReader(r)
	if err != nil {
		u.log.Debug("Could not sniff upload", "name", name, "error", err)
		return
	}
	if !detected.Is(contentType) {
		u.log.Warn("Upload content does not match its extension",
			"name", name, "declared", contentType, "detected", detected.String())
	}
}
