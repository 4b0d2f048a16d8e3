package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"photo-board/helpers"
	"photo-board/models"
	"time"

	"github.com/samber/lo"
)

type PostgresMessageRepository struct {
	db  *sql.DB
	now Clock
}

func NewPostgresMessageRepository(db *sql.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{db: db, now: utcNow}
}

func (r *PostgresMessageRepository) WithClock(now Clock) *PostgresMessageRepository {
	r.now = now
	return r
}

func (r *PostgresMessageRepository) Create(ctx context.Context, name, text, imageRef string) (models.Message, error) {
	msg := models.Message{
		ID:        helpers.GenerateID(),
		Timestamp: r.now().UTC().Truncate(time.Microsecond), // column precision
		Name:      name,
		Text:      text,
		ImageRef:  imageRef,
	}

	var filename sql.NullString
	if imageRef != "" {
		filename = sql.NullString{String: imageRef, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, "timestamp", name, message, filename) VALUES ($1, $2, $3, $4, $5)`,
		msg.ID, msg.Timestamp, msg.Name, msg.Text, filename,
	)
	if err != nil {
		return models.Message{}, fmt.Errorf("insert message: %w", err)
	}
	return msg, nil
}

func (r *PostgresMessageRepository) Recent(ctx context.Context, n int) ([]models.Message, error) {
	if n <= 0 {
		return []models.Message{}, nil
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, "timestamp", name, message, filename FROM messages ORDER BY "timestamp" DESC, seq DESC LIMIT $1`,
		n,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0, n)
	for rows.Next() {
		var m models.Message
		var filename sql.NullString
		if err := rows.Scan(&m.ID, &m.Timestamp, &m.Name, &m.Text, &filename); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Timestamp = m.Timestamp.UTC()
		if filename.Valid {
			m.ImageRef = filename.String
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return lo.Reverse(messages), nil
}
