package error

// GenericError is implemented by every typed service error so the
// recovery middleware can map panics back to a proper API response.
type GenericError interface {
	error
	ErrCode() string
	StatusCode() int
}
