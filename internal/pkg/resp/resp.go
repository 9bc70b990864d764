/*
Package resp sends the JSON body shape shared by every HTTP endpoint.

A response always carries a business code and message; success responses may
attach a data payload, errors map their code to an HTTP status.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"parlor/internal/pkg/errs"
	"parlor/internal/pkg/logx"
)

// JSONResponse is the body shape of every HTTP response this server writes.
type JSONResponse struct {
	// Code is zero on success; error codes live in the errs package.
	Code int `json:"code"`

	// Message is the client-facing description of the outcome.
	Message string `json:"message"`

	// Data is the optional response payload.
	Data any `json:"data,omitempty"`
}

// RespondJSON sets the response headers and writes the marshaled payload.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	response, err := json.Marshal(payload)
	if err != nil {
		logx.Error(
			err,
			"Error encoding JSON response",
			"http_status", httpStatus,
		)

		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(response)
}

// RespondSuccess writes the payload under HTTP 200 with a zero business code.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	res := JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	}
	RespondJSON(w, r, http.StatusOK, res)
}

// RespondError writes the error's message and code under its mapped HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	res := JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
		Data:    nil,
	}
	RespondJSON(w, r, customErr.Status, res)
}
