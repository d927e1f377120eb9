package thumbs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/image/draw"

	"github.com/filedepot/filedepot/internal/server/blob"
	"github.com/filedepot/filedepot/internal/server/queue"
	"github.com/filedepot/filedepot/internal/server/storage"
)

// Worker errors. These are permanent validation failures: a task failing
// with one of them is never retried.
var (
	// ErrMissingFileID indicates a thumbnail task without a file id
	ErrMissingFileID = errors.New("missing fileId")

	// ErrMissingUserID indicates a task without a user id
	ErrMissingUserID = errors.New("missing userId")

	// ErrFileNotFound indicates no record matching both file id and owner
	ErrFileNotFound = errors.New("file not found")

	// ErrUserNotFound indicates a welcome task for an unknown user
	ErrUserNotFound = errors.New("user not found")

	// ErrUnknownTask indicates a task type the worker does not handle
	ErrUnknownTask = errors.New("unknown task type")
)

// ThumbnailWidths are the derivative sizes produced for every image, stored
// alongside the original as <path>_<width>.
var ThumbnailWidths = []int{500, 250, 100}

// Worker consumes queue tasks: thumbnail generation for images and welcome
// notifications for fresh registrations. Processing is idempotent; re-running
// a task rewrites the same derivative paths.
type Worker struct {
	logger     *slog.Logger
	files      storage.FileStore
	users      storage.UserStore
	blobs      blob.Store
	maxRetries uint64
	backoff    time.Duration
}

// NewWorker creates a new background worker
func NewWorker(logger *slog.Logger, files storage.FileStore, users storage.UserStore, blobs blob.Store) *Worker {
	return &Worker{
		logger:     logger,
		files:      files,
		users:      users,
		blobs:      blobs,
		maxRetries: 3,
		backoff:    100 * time.Millisecond,
	}
}

// Handle dispatches a single task. Transient blob errors are retried with
// exponential backoff inside the task handlers; validation failures fail
// the task immediately.
func (w *Worker) Handle(ctx context.Context, task queue.Task) error {
	switch task.Type {
	case queue.TaskThumbnail:
		return w.processThumbnail(ctx, task)
	case queue.TaskWelcome:
		return w.processWelcome(ctx, task)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTask, task.Type)
	}
}

func (w *Worker) processThumbnail(ctx context.Context, task queue.Task) error {
	if task.FileID == "" {
		return ErrMissingFileID
	}
	if task.UserID == "" {
		return ErrMissingUserID
	}

	record, err := w.files.GetUserFile(ctx, task.FileID, task.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrFileNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("failed to load file record: %w", err)
	}

	var data []byte
	err = w.withRetry(ctx, func(ctx context.Context) error {
		var readErr error
		data, readErr = w.blobs.Read(ctx, record.LocalPath)
		if readErr == nil {
			return nil
		}
		if errors.Is(readErr, blob.ErrNotFound) {
			// A missing original never appears on retry
			return readErr
		}
		return retry.RetryableError(readErr)
	})
	if err != nil {
		return fmt.Errorf("failed to read original: %w", err)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	for _, width := range ThumbnailWidths {
		encoded, err := encodeImage(scaleToWidth(src, width), format)
		if err != nil {
			return fmt.Errorf("failed to encode %d thumbnail: %w", width, err)
		}

		key := fmt.Sprintf("%s_%d", record.LocalPath, width)
		err = w.withRetry(ctx, func(ctx context.Context) error {
			if writeErr := w.blobs.Write(ctx, key, encoded); writeErr != nil {
				return retry.RetryableError(writeErr)
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to write %d thumbnail: %w", width, err)
		}
	}

	w.logger.InfoContext(ctx, "thumbnails generated",
		slog.String("file_id", record.ID),
		slog.String("user_id", record.UserID))

	return nil
}

func (w *Worker) processWelcome(ctx context.Context, task queue.Task) error {
	if task.UserID == "" {
		return ErrMissingUserID
	}

	user, err := w.users.GetUserByID(ctx, task.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	// Stands in for an outbound email integration
	w.logger.InfoContext(ctx, "welcome new user",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email))

	return nil
}

func (w *Worker) withRetry(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(w.maxRetries, retry.NewExponential(w.backoff))
	return retry.Do(ctx, backoff, fn)
}

// scaleToWidth resizes src to the target width, preserving aspect ratio.
func scaleToWidth(src image.Image, width int) image.Image {
	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return src
	}

	height := int(math.Round(float64(width) * float64(bounds.Dy()) / float64(bounds.Dx())))
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	return dst
}

// encodeImage re-encodes img in the original's format.
func encodeImage(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	case "jpeg":
		if err := jpeg.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	case "gif":
		if err := gif.Encode(&buf, img, nil); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported image format %q", format)
	}

	return buf.Bytes(), nil
}
