package models

import "errors"

var (
	ErrValidation           = errors.New("invalid submission")
	ErrUpload               = errors.New("image upload failed")
	ErrPersistence          = errors.New("message could not be saved")
	ErrUnsupportedImageType = errors.New("unsupported image type")
	ErrInvalidBlobName      = errors.New("invalid blob name")
)
