/*
Package errs provides custom error types and application-level error code constants.

These error codes identify specific business or system errors both internally within
the server and in communication with clients.
*/
package errs

// 1xxx: General Request Handling Errors
const (
	// ErrInvalidParams indicates that request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrRateLimitExceeded indicates that the request rate has exceeded the set limit.
	ErrRateLimitExceeded = 1002

	// ErrInvalidEventFormat indicates that an inbound WebSocket event could not be decoded.
	ErrInvalidEventFormat = 1003
)

// 2xxx: Matchmaking and Game Session Errors
const (
	// ErrGameKindInvalid indicates that an unknown game kind was requested.
	ErrGameKindInvalid = 2101

	// ErrInviteNotFound indicates an operation on an unknown or expired invite id.
	ErrInviteNotFound = 2102

	// ErrMalformedMove indicates that a move payload failed shape or range validation.
	// Malformed moves are dropped without a reply; the code exists for logging.
	ErrMalformedMove = 2201

	// ErrNoActiveSession indicates an action that requires an active game session
	// was issued without one. Treated as a resynchronization signal.
	ErrNoActiveSession = 2301
)

// 3xxx: Identity Errors
const (
	// ErrUsernameMissing indicates that a handshake arrived without a username.
	ErrUsernameMissing = 3001

	// ErrUsernameTaken indicates that the requested username is bound to a live connection.
	ErrUsernameTaken = 3002
)

// 5xxx: Internal System Errors
const (
	// ErrUnknown represents an unclassified, general server internal error.
	ErrUnknown = 5000
)
