package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"photo-board/models"
	"photo-board/repositories"
	"photo-board/validators"
)

// SubmissionState is a step of the submission flow.
type SubmissionState int

const (
	Received SubmissionState = iota
	Validating
	UploadingImage
	Persisting
	Done
	Invalid
	Failed
)

func (s SubmissionState) String() string {
	switch s {
	case Received:
		return "received"
	case Validating:
		return "validating"
	case UploadingImage:
		return "uploading_image"
	case Persisting:
		return "persisting"
	case Done:
		return "done"
	case Invalid:
		return "invalid"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type ImageUploader interface {
	Upload(ctx context.Context, r io.ReadSeeker, originalFilename string) (string, error)
}

type MessageService struct {
	repository    repositories.MessageRepository
	uploader      ImageUploader
	log           *slog.Logger
	maxUploadSize int64
}

func NewMessageService(repository repositories.MessageRepository, uploader ImageUploader, log *slog.Logger, maxUploadSize int64) *MessageService {
	return &MessageService{
		repository:    repository,
		uploader:      uploader,
		log:           log,
		maxUploadSize: maxUploadSize,
	}
}

type submission struct {
	log   *slog.Logger
	state SubmissionState
}

func (s *submission) to(next SubmissionState) {
	s.log.Debug("Submission state changed", "from", s.state, "to", next)
	s.state = next
}

// Submit runs validation, the optional image upload and persistence, in that
// order. The image is always written before the message that references it.
// Returned errors wrap models.ErrValidation, models.ErrUpload or
// models.ErrPersistence.
func (s *MessageService) Submit(ctx context.Context, in models.Submission) (models.Message, error) {
	flow := &submission{log: s.log, state: Received}

	flow.to(Validating)
	if err := validators.ValidateSubmission(in, s.maxUploadSize); err != nil {
		flow.to(Invalid)
		s.log.Info("Submission rejected", "error", err)
		return models.Message{}, err
	}

	var imageRef string
	if in.Photo != nil {
		flow.to(UploadingImage)
		ref, err := s.upload(ctx, in.Photo)
		if err != nil {
			flow.to(Failed)
			s.log.Error("Image upload failed", "filename", in.Photo.Filename, "error", err)
			return models.Message{}, err
		}
		imageRef = ref
	}

	flow.to(Persisting)
	msg, err := s.repository.Create(ctx, in.Name, in.Text, imageRef)
	if err != nil {
		flow.to(Failed)
		if imageRef != "" {
			// The blob stays in storage without a message pointing at it.
			s.log.Error("Message not saved, uploaded image is orphaned", "image_ref", imageRef, "error", err)
		} else {
			s.log.Error("Message not saved", "error", err)
		}
		return models.Message{}, fmt.Errorf("%w: %w", models.ErrPersistence, err)
	}

	flow.to(Done)
	s.log.Info("Message posted", "id", msg.ID, "image_ref", msg.ImageRef)
	return msg, nil
}

func (s *MessageService) upload(ctx context.Context, photo *models.Photo) (string, error) {
	f, err := photo.Open()
	if err != nil {
		return "", fmt.Errorf("%w: opening %q: %w", models.ErrUpload, photo.Filename, err)
	}
	defer f.Close()

	ref, err := s.uploader.Upload(ctx, f, photo.Filename)
	if err != nil && !errors.Is(err, models.ErrUpload) {
		err = fmt.Errorf("%w: %w", models.ErrUpload, err)
	}
	return ref, err
}

// Recent returns the n newest messages, oldest first.
func (s *MessageService) Recent(ctx context.Context, n int) ([]models.Message, error) {
	messages, err := s.repository.Recent(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	return messages, nil
}
