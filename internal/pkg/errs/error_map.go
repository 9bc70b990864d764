/*
Package errs provides custom error types and application-level error code constants.

This file defines the map from error codes to the CustomError struct, used to standardize
HTTP responses and WebSocket error events.
*/
package errs

import "net/http"

// errorMap stores the detailed CustomError struct corresponding to every application error code.
// The key is the error code (int), and the value contains the user message and HTTP status code.
var errorMap = map[int]CustomError{
	// 1xxx: General Request Handling Errors
	ErrInvalidParams:      {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrRateLimitExceeded:  {Code: ErrRateLimitExceeded, Message: "Too many requests. Please try again later.", Status: http.StatusTooManyRequests},
	ErrInvalidEventFormat: {Code: ErrInvalidEventFormat, Message: "Unsupported event format."},

	// 2xxx: Matchmaking and Game Session Errors
	ErrGameKindInvalid: {Code: ErrGameKindInvalid, Message: "Unknown game."},
	ErrInviteNotFound:  {Code: ErrInviteNotFound, Message: "Game invite not found or expired."},
	ErrMalformedMove:   {Code: ErrMalformedMove, Message: "Malformed move."},
	ErrNoActiveSession: {Code: ErrNoActiveSession, Message: "No active game session."},

	// 3xxx: Identity Errors
	ErrUsernameMissing: {Code: ErrUsernameMissing, Message: "Username not provided.", Status: http.StatusBadRequest},
	ErrUsernameTaken:   {Code: ErrUsernameTaken, Message: "Username %s is already taken."},

	// 5xxx: Internal System Errors
	ErrUnknown: {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
}
