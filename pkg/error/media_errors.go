package error

import "net/http"

// Media pipeline failure taxonomy. All four resolve to the same
// caller-visible behavior (redirect to the placeholder asset); the
// distinct types exist for logging and tests.

type InvalidReferenceError string

func (err InvalidReferenceError) Error() string {
	return string(err)
}

func (err InvalidReferenceError) ErrCode() string {
	return "INVALID_REFERENCE"
}

func (err InvalidReferenceError) StatusCode() int {
	return http.StatusUnprocessableEntity
}

type DomainNotAllowedError string

func (err DomainNotAllowedError) Error() string {
	return string(err)
}

func (err DomainNotAllowedError) ErrCode() string {
	return "DOMAIN_NOT_ALLOWED"
}

func (err DomainNotAllowedError) StatusCode() int {
	return http.StatusForbidden
}

type UpstreamUnavailableError string

func (err UpstreamUnavailableError) Error() string {
	return string(err)
}

func (err UpstreamUnavailableError) ErrCode() string {
	return "UPSTREAM_UNAVAILABLE"
}

func (err UpstreamUnavailableError) StatusCode() int {
	return http.StatusBadGateway
}

type TranscodeFailureError string

func (err TranscodeFailureError) Error() string {
	return string(err)
}

func (err TranscodeFailureError) ErrCode() string {
	return "TRANSCODE_FAILURE"
}

func (err TranscodeFailureError) StatusCode() int {
	return http.StatusInternalServerError
}
