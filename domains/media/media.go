package media

import "context"

// TransformRequest is built per HTTP request from the /media-proxy query
// string and never persisted.
type TransformRequest struct {
	SourceReference string
	Width           int
	Quality         int
	Format          string
}

// TransformResult carries the bytes served to the storefront. Format is
// the format that actually got produced, which may differ from the
// requested one after a webp fallback.
type TransformResult struct {
	Data        []byte
	ContentType string
	Format      string
	CacheHit    bool
}

// IUpstreamFetcher retrieves raw image bytes from a validated URL.
type IUpstreamFetcher interface {
	Fetch(ctx context.Context, url string) (body []byte, contentType string, err error)
}

type IMediaUsecase interface {
	// Transform runs the full proxy pipeline: normalize the reference,
	// enforce the allow-list, serve from cache or fetch + transcode +
	// store. Every failure returns a typed pipeline error; the HTTP
	// layer maps all of them to a placeholder redirect.
	Transform(ctx context.Context, request TransformRequest) (TransformResult, error)
}
