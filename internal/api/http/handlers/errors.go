package handlers

import (
	"errors"

	"github.com/rishabhsingh-git/photography-website-sub000/internal/auth"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/guest"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/repository"
	"github.com/rishabhsingh-git/photography-website-sub000/internal/service"
	apperrors "github.com/rishabhsingh-git/photography-website-sub000/pkg/util"
)

// mapError turns service and storage sentinels into API errors.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, auth.ErrInvalidCredentials):
		return apperrors.NewInvalidCredentials()
	case errors.Is(err, auth.ErrInvalidToken):
		return apperrors.NewInvalidToken("refresh token is invalid or expired")
	case errors.Is(err, auth.ErrForbidden):
		return apperrors.NewForbidden("insufficient role")
	case errors.Is(err, service.ErrEmailTaken):
		return apperrors.NewConflict("email already registered", nil)
	case errors.Is(err, service.ErrInvalidRoles):
		return apperrors.NewValidationError(err.Error(), nil)
	case errors.Is(err, service.ErrGuestTarget):
		return apperrors.NewConflict(err.Error(), nil)
	case errors.Is(err, guest.ErrOwnerGone):
		return apperrors.NewConflict("cart owner no longer exists; retry the request", nil)
	case errors.Is(err, guest.ErrInvalidServiceID):
		return apperrors.NewValidationError(err.Error(), map[string]any{"field": "service_id"})
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("principal", nil)
	}
	return apperrors.MapError(err)
}
