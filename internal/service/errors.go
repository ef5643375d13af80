package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/koyostar/ItinaviCN-sub000/internal/auth"
	"github.com/koyostar/ItinaviCN-sub000/internal/ledger"
	"github.com/koyostar/ItinaviCN-sub000/internal/middleware"
)

var errNoUser = errors.New("not authenticated")

// connectError maps domain errors onto Connect codes. Errors that already
// carry a code pass through.
func connectError(err error) error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return err
	}
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, ledger.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, ledger.ErrPermission):
		return connect.NewError(connect.CodePermissionDenied, err)
	case errors.Is(err, ledger.ErrConflict):
		return connect.NewError(connect.CodeAborted, err)
	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrMissingDisplayName):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	}
	return connect.NewError(connect.CodeInternal, err)
}

// invalidArgument builds a CodeInvalidArgument error wrapping ErrValidation.
func invalidArgument(msg string) error {
	return connect.NewError(connect.CodeInvalidArgument, errors.Join(ledger.ErrValidation, errors.New(msg)))
}

// callerID returns the authenticated user or a CodeUnauthenticated error.
func callerID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errNoUser)
	}
	return userID, nil
}
