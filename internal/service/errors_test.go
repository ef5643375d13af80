package service

import (
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"

	"github.com/koyostar/ItinaviCN-sub000/internal/auth"
	"github.com/koyostar/ItinaviCN-sub000/internal/ledger"
)

func TestConnectError(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{fmt.Errorf("%w: bad total", ledger.ErrValidation), connect.CodeInvalidArgument},
		{fmt.Errorf("%w: expense e1", ledger.ErrNotFound), connect.CodeNotFound},
		{fmt.Errorf("%w: not yours", ledger.ErrPermission), connect.CodePermissionDenied},
		{fmt.Errorf("%w: raced", ledger.ErrConflict), connect.CodeAborted},
		{auth.ErrEmailExists, connect.CodeAlreadyExists},
		{auth.ErrWeakPassword, connect.CodeInvalidArgument},
		{auth.ErrInvalidCredentials, connect.CodeUnauthenticated},
		{connect.NewError(connect.CodeUnauthenticated, errNoUser), connect.CodeUnauthenticated},
		{errors.New("disk on fire"), connect.CodeInternal},
	}
	for _, tt := range tests {
		if got := connect.CodeOf(connectError(tt.err)); got != tt.want {
			t.Errorf("connectError(%v) code = %v, want %v", tt.err, got, tt.want)
		}
	}

	if got := connect.CodeOf(invalidArgument("x")); got != connect.CodeInvalidArgument {
		t.Errorf("invalidArgument code = %v", got)
	}
}
