package models

import (
	"errors"
	"fmt"
)

// AppError is a tagged failure. Code is stable and machine-readable;
// handlers map it to an HTTP status and return it to the client
// unchanged as {"status": code, "error": message}.
type AppError struct {
	Code    string
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

var (
	ErrNotFound               = &AppError{"not_found", "matching not found"}
	ErrUserNotFound           = &AppError{"user_not_found", "user not found"}
	ErrRoomNotFound           = &AppError{"room_not_found", "chat room not found"}
	ErrPostNotFound           = &AppError{"post_not_found", "post not found"}
	ErrNotificationNotFound   = &AppError{"notification_not_found", "notification not found"}
	ErrCourtNotFound          = &AppError{"court_not_found", "tennis court not found"}
	ErrInvalidTransition      = &AppError{"invalid_transition", "matching status does not permit this action"}
	ErrNotHost                = &AppError{"not_host", "only the host may perform this action"}
	ErrMatchNotRecruiting     = &AppError{"match_not_recruiting", "matching is no longer recruiting"}
	ErrAlreadyApplied         = &AppError{"already_applied", "already joined this matching"}
	ErrSelfApplication        = &AppError{"self_application", "the host cannot apply to their own matching"}
	ErrNotAParticipant        = &AppError{"not_a_participant", "not a participant of this matching"}
	ErrMatchFull              = &AppError{"match_full", "matching is full"}
	ErrIdentitySpaceExhausted = &AppError{"identity_space_exhausted", "no user ID available"}
	ErrEmailExists            = &AppError{"email_exists", "an account with this email already exists"}
	ErrInvalidCredentials     = &AppError{"invalid_credentials", "invalid email or password"}
	ErrNotAuthor              = &AppError{"not_author", "only the author may modify this post"}
	ErrNotRecipient           = &AppError{"not_recipient", "only the recipient may read this notification"}
	ErrAlreadyReviewed        = &AppError{"already_reviewed", "this participant was already reviewed for this matching"}
	ErrNotRoomMember          = &AppError{"not_room_member", "not a participant of this chat room"}
)

// ValidationError reports a missing or malformed request field.
func ValidationError(msg string) *AppError {
	return &AppError{"validation_error", msg}
}

// ErrorCode extracts the stable code from err, or "internal_error" for
// anything outside the taxonomy.
func ErrorCode(err error) string {
	var e *AppError
	if errors.As(err, &e) {
		return e.Code
	}
	return "internal_error"
}
