package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"photo-board/helpers"
	"photo-board/models"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
)

const messagePrefix = "msg:"

var messageSequenceKey = []byte("seq:messages")

type BadgerMessageRepository struct {
	db  *badger.DB
	seq *badger.Sequence
	log *slog.Logger
	now Clock
}

type diskMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	Filename  *string   `json:"filename"`
}

func NewBadgerMessageRepository(db *badger.DB, log *slog.Logger) (*BadgerMessageRepository, error) {
	seq, err := db.GetSequence(messageSequenceKey, 100)
	if err != nil {
		return nil, fmt.Errorf("message sequence: %w", err)
	}
	return &BadgerMessageRepository{db: db, seq: seq, log: log, now: utcNow}, nil
}

func (r *BadgerMessageRepository) WithClock(now Clock) *BadgerMessageRepository {
	r.now = now
	return r
}

// Close hands unused sequence numbers back to the database.
func (r *BadgerMessageRepository) Close() error {
	return r.seq.Release()
}

// Create stores the message under "msg:{unix_nanos}:{sequence}". Both parts
// are zero padded so keys sort by timestamp, then by insertion order.
func (r *BadgerMessageRepository) Create(ctx context.Context, name, text, imageRef string) (models.Message, error) {
	if err := ctx.Err(); err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:        helpers.GenerateID(),
		Timestamp: r.now().UTC(),
		Name:      name,
		Text:      text,
		ImageRef:  imageRef,
	}

	n, err := r.seq.Next()
	if err != nil {
		return models.Message{}, fmt.Errorf("next message sequence: %w", err)
	}
	key := fmt.Sprintf("%s%019d:%020d", messagePrefix, msg.Timestamp.UnixNano(), n)

	value, err := json.Marshal(fromMessage(msg))
	if err != nil {
		return models.Message{}, err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return models.Message{}, fmt.Errorf("store message: %w", err)
	}
	return msg, nil
}

// Recent walks the keyspace backwards from the newest key.
func (r *BadgerMessageRepository) Recent(ctx context.Context, n int) ([]models.Message, error) {
	if n <= 0 {
		return []models.Message{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, n)
	err := r.db.View(func(txn *badger.Txn) error {
		prefix := []byte(messagePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.PrefetchSize = n
		it := txn.NewIterator(options)
		defer it.Close()

		// '~' sorts after every digit, so this lands past the newest key.
		for it.Seek(append(prefix, '~')); it.ValidForPrefix(prefix); it.Next() {
			if len(messages) == n {
				r.log.Debug(fmt.Sprintf("Maximum of %d message reached", n))
				break
			}
			var dm diskMessage
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &dm)
			})
			if err != nil {
				return err
			}
			messages = append(messages, toMessage(dm))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read recent messages: %w", err)
	}

	return lo.Reverse(messages), nil
}

func fromMessage(m models.Message) diskMessage {
	dm := diskMessage{
		ID:        m.ID,
		Timestamp: m.Timestamp,
		Name:      m.Name,
		Message:   m.Text,
	}
	if m.ImageRef != "" {
		dm.Filename = lo.ToPtr(m.ImageRef)
	}
	return dm
}

func toMessage(dm diskMessage) models.Message {
	return models.Message{
		ID:        dm.ID,
		Timestamp: dm.Timestamp.UTC(),
		Name:      dm.Name,
		Text:      dm.Message,
		ImageRef:  lo.FromPtr(dm.Filename),
	}
}
