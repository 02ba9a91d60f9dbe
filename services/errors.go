package services

import "errors"

// error กลางของชั้น service — controller map เป็น HTTP status ผ่าน pkg/resp
var (
	ErrValidation = errors.New("invalid input")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)
