package errors

import (
	"encoding/json"
	"fmt"
)

// One sentinel per documented error code, so callers can match specific
// failure kinds with errors.Is. See https://developers.notion.com/reference/errors
var ErrInvalidJSON = fmt.Errorf("request body could not be decoded as JSON")
var ErrInvalidRequestURL = fmt.Errorf("request URL is not valid")
var ErrUnsupportedRequest = fmt.Errorf("request is not supported")
var ErrValidation = fmt.Errorf("request body does not match the expected schema")
var ErrMissingVersion = fmt.Errorf("request is missing the required version header")
var ErrUnauthorized = fmt.Errorf("bearer token is not valid")
var ErrRestrictedResource = fmt.Errorf("client lacks permission to perform this operation")
var ErrObjectNotFound = fmt.Errorf("resource does not exist or has not been shared")
var ErrConflict = fmt.Errorf("transaction could not be completed")
var ErrRateLimited = fmt.Errorf("request exceeds the number of requests allowed")
var ErrInternal = fmt.Errorf("internal server error")
var ErrServiceUnavailable = fmt.Errorf("service unavailable")
var ErrDatabaseUnavailable = fmt.Errorf("backing data store unavailable")

// ErrBadResponse is raised locally when a response body can not be processed.
var ErrBadResponse = fmt.Errorf("bad response")

type apiError struct {
	msg    string
	target error
}

func (e apiError) Error() string        { return e.msg }
func (e apiError) Is(target error) bool { return target == e.target }

var codeTargets = map[string]error{
	"invalid_json":                    ErrInvalidJSON,
	"invalid_request_url":             ErrInvalidRequestURL,
	"invalid_request":                 ErrUnsupportedRequest,
	"validation_error":                ErrValidation,
	"missing_version":                 ErrMissingVersion,
	"unauthorized":                    ErrUnauthorized,
	"restricted_resource":             ErrRestrictedResource,
	"object_not_found":                ErrObjectNotFound,
	"conflict_error":                  ErrConflict,
	"rate_limited":                    ErrRateLimited,
	"internal_server_error":           ErrInternal,
	"service_unavailable":             ErrServiceUnavailable,
	"database_connection_unavailable": ErrDatabaseUnavailable,
}

// NewErrorFromCode maps a discriminated error code to its typed error. Codes
// outside the documented set map to ErrInternal with the code preserved in
// the message.
func NewErrorFromCode(code, message string) error {
	if target, ok := codeTargets[code]; ok {
		return &apiError{msg: message, target: target}
	}

	return &apiError{
		msg:    fmt.Sprintf("unknown error code %q: %s", code, message),
		target: ErrInternal,
	}
}

func NewNotFoundError(msg string) error {
	return &apiError{msg: msg, target: ErrObjectNotFound}
}

func NewValidationError(msg string) error {
	return &apiError{msg: msg, target: ErrValidation}
}

func NewUnauthorizedError(msg string) error {
	return &apiError{msg: msg, target: ErrUnauthorized}
}

// ValidateResponse inspects a decoded response body for the error sentinel
// ({"object":"error", "status":…, "code":…, "message":…}) and returns the
// typed error for its code. Success responses pass through untouched: the
// return is nil and the mapping is never transformed.
func ValidateResponse(response map[string]any) error {
	isError := false
	for _, v := range response {
		if v == "error" {
			isError = true
			break
		}
	}

	if !isError {
		return nil
	}

	code, _ := response["code"].(string)
	message, _ := response["message"].(string)

	return NewErrorFromCode(code, message)
}

// ValidateResponseBody decodes a raw response body and validates it.
func ValidateResponseBody(body []byte) (map[string]any, error) {
	response := map[string]any{}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %s (%w)", err.Error(), ErrBadResponse)
	}

	if err := ValidateResponse(response); err != nil {
		return nil, err
	}

	return response, nil
}
