//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"context"
	"photo-board/models"
	"time"
)

// MessageRepository stores board messages. There is no update or delete.
type MessageRepository interface {
	// Create assigns ID and Timestamp and persists the message.
	// An empty imageRef means no image.
	Create(ctx context.Context, name, text, imageRef string) (models.Message, error)
	// Recent returns the n newest messages, oldest first.
	Recent(ctx context.Context, n int) ([]models.Message, error)
}

// Clock returns the creation time of a new message.
type Clock func() time.Time

func utcNow() time.Time {
	return time.Now().UTC()
}
