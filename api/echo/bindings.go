package echoapi

import (
	"github.com/newrise0410/piano-academy-app-sub002/core"
	"github.com/newrise0410/piano-academy-app-sub002/core/user"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		User  user.User `json:"user"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	PushTokenRequest struct {
		Token string `json:"token" validate:"required"`
	}

	SelectChildRequest struct {
		StudentID string `json:"studentId" validate:"required"`
	}

	RejectRequest struct {
		Reason string `json:"reason"`
	}

	MarkPaidRequest struct {
		Method string `json:"method" validate:"omitempty,oneof=cash card transfer"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (r LoginRequest) Validate() error         { return core.Validate.Struct(r) }
func (r PasswordResetRequest) Validate() error { return core.Validate.Struct(r) }
func (r PushTokenRequest) Validate() error     { return core.Validate.Struct(r) }
func (r SelectChildRequest) Validate() error   { return core.Validate.Struct(r) }
func (r MarkPaidRequest) Validate() error      { return core.Validate.Struct(r) }
