package errs

import "net/http"

// errorMap stores the CustomError template for every application error code.
// A zero Status is rendered as 200 OK with the code in the body, matching the
// client contract for business errors.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:         {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType:  {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:     {Code: ErrInvalidJSONFormat, Message: "Unsupported request format.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:    {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRequestEntityTooLarge: {Code: ErrRequestEntityTooLarge, Message: "Request size is too large.", Status: http.StatusRequestEntityTooLarge},
	ErrRateLimitExceeded:     {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},

	// 2xxx: Room and Membership Errors
	ErrRoomTypeInvalid:   {Code: ErrRoomTypeInvalid, Message: "Invalid room type.", Status: http.StatusBadRequest},
	ErrRoomNameInvalid:   {Code: ErrRoomNameInvalid, Message: "Room name must be 1 to 100 characters.", Status: http.StatusBadRequest},
	ErrRoomNotFound:      {Code: ErrRoomNotFound, Message: "The specified room does not exist.", Status: http.StatusNotFound},
	ErrRoomForbidden:     {Code: ErrRoomForbidden, Message: "You do not have permission to do that.", Status: http.StatusForbidden},
	ErrNotRoomMember:     {Code: ErrNotRoomMember, Message: "You are not a member of this room.", Status: http.StatusConflict},
	ErrRoomSecretInvalid: {Code: ErrRoomSecretInvalid, Message: "Room password must be 4 to 72 characters.", Status: http.StatusBadRequest},

	// 3xxx: User, Session, and Identity Errors
	ErrUnauthorized:        {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrAlreadyLoggedIn:     {Code: ErrAlreadyLoggedIn, Message: "You are already signed in."},
	ErrInvalidUsername:     {Code: ErrInvalidUsername, Message: "Usernames may contain letters, digits and @/./+/-/_ only (max 150)."},
	ErrInvalidPassword:     {Code: ErrInvalidPassword, Message: "Invalid password."},
	ErrInvalidEmail:        {Code: ErrInvalidEmail, Message: "Invalid e-mail address."},
	ErrUserAlreadyExists:   {Code: ErrUserAlreadyExists, Message: "That username is already taken."},
	ErrInvalidCredentials:  {Code: ErrInvalidCredentials, Message: "Incorrect credentials.", Status: http.StatusUnauthorized},
	ErrUserNotFound:        {Code: ErrUserNotFound, Message: "The specified user does not exist.", Status: http.StatusNotFound},
	ErrEmailAlreadyExists:  {Code: ErrEmailAlreadyExists, Message: "That e-mail address is already registered."},
	ErrOAuthStateInvalid:   {Code: ErrOAuthStateInvalid, Message: "Authentication failed.", Status: http.StatusUnauthorized},
	ErrOAuthExchangeFailed: {Code: ErrOAuthExchangeFailed, Message: "Authentication failed.", Status: http.StatusUnauthorized},
	ErrOAuthDisabled:       {Code: ErrOAuthDisabled, Message: "Google sign-in is not available.", Status: http.StatusNotImplemented},

	// 5xxx: Internal System Errors
	ErrUnknown:        {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrStoreTransient: {Code: ErrStoreTransient, Message: "The service is busy. Please retry.", Status: http.StatusServiceUnavailable},
}
