package infrastructure

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalServer = errors.New("internal server error")

	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUsernameTaken     = errors.New("username is already taken")
	ErrEmailNotVerified  = errors.New("email not verified")

	ErrMissingToken = errors.New("missing access token")
	ErrInvalidToken = errors.New("invalid access token")
	ErrTokenExpired = errors.New("access token has expired")

	ErrAlreadyRequested = errors.New("friend request already exists")
	ErrAlreadyFriends   = errors.New("already friends")
	ErrBlocked          = errors.New("relationship is blocked")
	ErrSelfFriendship   = errors.New("cannot friend yourself")

	ErrNotParticipant = errors.New("not a conversation participant")
	ErrNotSender      = errors.New("only the sender may do this")
	ErrEditWindow     = errors.New("edit window has elapsed")
	ErrNotEditable    = errors.New("message is not editable")
	ErrMessageDeleted = errors.New("message is deleted")

	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrUnsupportedType = errors.New("unsupported file type")
)
