package utils

// ResponseData is the JSON envelope of every admin API response.
type ResponseData struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Results any    `json:"results,omitempty"`
}

// PanicIfNeeded panics with the given error so the recovery middleware
// can turn it into a typed API response.
func PanicIfNeeded(err any) {
	if err != nil {
		panic(err)
	}
}
