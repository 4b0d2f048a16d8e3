package validators

import (
	"errors"
	"fmt"
	"photo-board/helpers"
	"photo-board/models"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	FieldName    = "input_name"
	FieldMessage = "input_message"
	FieldPhoto   = "input_photo"
)

var validate = validator.New()

var imageExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"gif":  {},
}

// FieldErrors maps a form field to the rule it broke.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, field := range fields {
		parts[i] = field + ": " + e[field]
	}
	return strings.Join(parts, "; ")
}

func (e FieldErrors) Unwrap() error {
	return models.ErrValidation
}

// ValidateSubmission checks every field and reports all failures at once.
// A nil Photo means no file was attached. maxUploadSize <= 0 disables the
// size check.
func ValidateSubmission(s models.Submission, maxUploadSize int64) error {
	errs := FieldErrors{}
	if err := ValidateName(s.Name); err != nil {
		errs[FieldName] = err.Error()
	}
	if err := ValidateMessage(s.Text); err != nil {
		errs[FieldMessage] = err.Error()
	}
	if err := ValidatePhoto(s.Photo, maxUploadSize); err != nil {
		errs[FieldPhoto] = err.Error()
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func ValidateName(name string) error {
	return length(name, 1, 16)
}

func ValidateMessage(text string) error {
	return length(text, 1, 1024)
}

func ValidatePhoto(photo *models.Photo, maxUploadSize int64) error {
	if photo == nil {
		return nil
	}
	if !IsImageFilename(photo.Filename) {
		return fmt.Errorf("%w: %q", models.ErrUnsupportedImageType, photo.Filename)
	}
	if maxUploadSize > 0 && photo.Size > maxUploadSize {
		return fmt.Errorf("file too large (%d bytes, max %d)", photo.Size, maxUploadSize)
	}
	return nil
}

func IsImageFilename(filename string) bool {
	_, ok := imageExtensions[helpers.Extension(filename)]
	return ok
}

// length counts runes, not bytes.
func length(value string, lo, hi int) error {
	err := validate.Var(value, fmt.Sprintf("min=%d,max=%d", lo, hi))
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		switch verrs[0].Tag() {
		case "min":
			return fmt.Errorf("must be at least %d characters", lo)
		case "max":
			return fmt.Errorf("must be at most %d characters", hi)
		}
	}
	return err
}
