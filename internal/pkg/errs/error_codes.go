/*
Package errs provides the application error type and the error code constants
shared by the room core, the account layer, and the HTTP surface.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates that the request Content-Type is not supported.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates that the request body is not valid JSON.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRequestEntityTooLarge indicates that the request body exceeded the server limit.
	ErrRequestEntityTooLarge = 1006

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1007
)

// 2xxx: Room and Membership Errors
const (
	// ErrRoomTypeInvalid indicates an unknown room kind at creation.
	ErrRoomTypeInvalid = 2101

	// ErrRoomNameInvalid indicates an empty or over-long room name.
	ErrRoomNameInvalid = 2102

	// ErrRoomNotFound covers both a room that does not exist (or is inactive) and a
	// private room the caller is not a member of. The two must stay indistinguishable.
	ErrRoomNotFound = 2103

	// ErrRoomForbidden indicates a known member lacking the role or creator identity required.
	ErrRoomForbidden = 2104

	// ErrNotRoomMember indicates an exit attempt without a membership.
	ErrNotRoomMember = 2105

	// ErrRoomSecretInvalid indicates a private room secret outside the accepted length.
	ErrRoomSecretInvalid = 2106
)

// 3xxx: User, Session, and Identity Errors
const (
	// ErrUnauthorized indicates that no caller identity could be resolved.
	ErrUnauthorized = 3001

	// ErrAlreadyLoggedIn indicates a sign-up or sign-in attempt with a valid session.
	ErrAlreadyLoggedIn = 3002

	// ErrInvalidUsername indicates a username that fails validation.
	ErrInvalidUsername = 3003

	// ErrInvalidPassword indicates a password outside the accepted length.
	ErrInvalidPassword = 3004

	// ErrInvalidEmail indicates a malformed e-mail address.
	ErrInvalidEmail = 3005

	// ErrUserAlreadyExists indicates the username is taken.
	ErrUserAlreadyExists = 3006

	// ErrInvalidCredentials indicates a username/password mismatch.
	ErrInvalidCredentials = 3007

	// ErrUserNotFound indicates a user id or username that does not resolve.
	ErrUserNotFound = 3008

	// ErrEmailAlreadyExists indicates another local account signs in with the e-mail address.
	ErrEmailAlreadyExists = 3009

	// ErrOAuthStateInvalid indicates an unknown, expired, or reused OAuth state token.
	ErrOAuthStateInvalid = 3101

	// ErrOAuthExchangeFailed indicates the identity provider rejected the authorization code.
	ErrOAuthExchangeFailed = 3102

	// ErrOAuthDisabled indicates Google sign-in is not configured.
	ErrOAuthDisabled = 3103
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000

	// ErrStoreTransient indicates store contention or a timeout. The request may be retried.
	ErrStoreTransient = 5001
)
