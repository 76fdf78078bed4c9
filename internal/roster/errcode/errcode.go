// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errcode

import "errors"

// Error is a coded error safe to show to callers.
type Error struct {
	Code int
	Msg  string
}

func (e *Error) Error() string {
	return e.Msg
}

var (
	// 4xxx are expected, validation shaped failures returned to the caller as-is.
	ErrInvalidToken           = failed(4405, "invitation token is invalid")
	ErrInvitationNotPending   = failed(4410, "invitation is no longer pending")
	ErrAlreadyMember          = failed(4411, "user is already a member of the organization")
	ErrEmailMismatch          = failed(4412, "invitation was sent to a different email address")
	ErrDuplicateInvitation    = failed(4413, "a pending invitation already exists for this email")
	ErrInvalidEmail           = failed(4414, "email address is invalid")
	ErrPermissionDenied       = failed(4031, "permission denied")
	ErrLastOwner              = failed(4420, "organization must keep at least one owner, assign another owner first")
	ErrUnknownRole            = failed(4421, "unknown role")
	ErrUserNotFound           = failed(4041, "user does not exist")
	ErrOrganizationNotFound   = failed(4043, "organization does not exist")
	ErrMemberNotFound         = failed(4044, "user is not a member of the organization")
	ErrMemberExists           = failed(4042, "membership already exists")
	ErrInvitationNotFound     = failed(4045, "invitation does not exist")
	ErrOwnershipTransferFault = failed(4422, "ownership can only be transferred by a current owner to another user")
	ErrInvalidMemberStatus    = failed(4423, "membership status must be active or inactive")

	// ErrOperationFailed hides unexpected failures; the cause is logged, never returned.
	ErrOperationFailed = failed(5000, "operation failed, please try again later")
	ErrDispatchFailed  = failed(5001, "invitation email could not be delivered")
)

func failed(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Code returns the code of the first *Error in err's chain, or ErrOperationFailed's code.
func Code(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrOperationFailed.Code
}

// IsExpected reports whether err carries a validation shaped code (4xxx).
func IsExpected(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code >= 4000 && e.Code < 5000
}
