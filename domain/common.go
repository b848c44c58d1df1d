package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	MesaageUserNotAllowed       = "user not allowed"
	MessageFailedProcessRequest = "failed to process request"
	MessageFailedBodyRequest    = "failed to parse request body"
	MessageFailedGetToken       = "failed to get token"
	MessageFailedTokenInvalid   = "failed to token invalid"
	MessageRouteNotFound        = "route not found"
	MessageSuccessPong          = "pong"

	// Error taxonomy. Every error returned by a service wraps one of these.
	ErrNotFound       = errors.New("not found")
	ErrAlreadyRelated = errors.New("already related")
	ErrNotRelated     = errors.New("not related")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInvalidInput   = errors.New("invalid input")
	ErrConflict       = errors.New("conflict")
	ErrPartialWrite   = errors.New("partial write failure")

	ErrParseUUID      = fmt.Errorf("failed to parse UUID: %w", ErrInvalidInput)
	ErrUserNotAllowed = fmt.Errorf("user not allowed: %w", ErrForbidden)
	ErrTokenNotFound  = fmt.Errorf("failed to token not found: %w", ErrUnauthorized)
	ErrTokenExpired   = fmt.Errorf("token expired: %w", ErrUnauthorized)
	ErrTokenInvalid   = fmt.Errorf("token invalid: %w", ErrUnauthorized)
)

// ParseID parses an opaque entity identifier.
func ParseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%q: %w", id, ErrParseUUID)
	}
	return parsed, nil
}

type (
	OwnerSummary struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Avatar *string `json:"avatar"`
	}

	IDRequest struct {
		ID string `json:"id" validate:"required,uuid"`
	}
)
