package rest

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainMedia "github.com/vitrina-shop/media-proxy/domains/media"
	pkgError "github.com/vitrina-shop/media-proxy/pkg/error"
)

type stubMediaUsecase struct {
	lastRequest domainMedia.TransformRequest
	result      domainMedia.TransformResult
	err         error
}

func (s *stubMediaUsecase) Transform(ctx context.Context, request domainMedia.TransformRequest) (domainMedia.TransformResult, error) {
	s.lastRequest = request
	if s.err != nil {
		return domainMedia.TransformResult{}, s.err
	}
	return s.result, nil
}

func newMediaApp(stub *stubMediaUsecase) *fiber.App {
	app := fiber.New()
	InitRestMedia(app, stub, "/statics/placeholder.webp")
	return app
}

func TestMediaProxy_Success(t *testing.T) {
	stub := &stubMediaUsecase{
		result: domainMedia.TransformResult{
			Data:        []byte("img-bytes"),
			ContentType: "image/webp",
			Format:      "webp",
			CacheHit:    true,
		},
	}
	app := newMediaApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/media-proxy?u=https%3A%2F%2Fcf.example-cdn.com%2Ffoo.jpg&w=200&q=80&fm=webp", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "image/webp", resp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=31536000, immutable", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("img-bytes"), body)

	assert.Equal(t, "https://cf.example-cdn.com/foo.jpg", stub.lastRequest.SourceReference)
	assert.Equal(t, 200, stub.lastRequest.Width)
	assert.Equal(t, 80, stub.lastRequest.Quality)
	assert.Equal(t, "webp", stub.lastRequest.Format)
}

func TestMediaProxy_URLAlias(t *testing.T) {
	stub := &stubMediaUsecase{
		result: domainMedia.TransformResult{Data: []byte("x"), ContentType: "image/jpeg", Format: "jpeg"},
	}
	app := newMediaApp(stub)

	resp, err := app.Test(httptest.NewRequest("GET", "/media-proxy?url=https%3A%2F%2Fcf.example-cdn.com%2Ffoo.jpg", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "https://cf.example-cdn.com/foo.jpg", stub.lastRequest.SourceReference)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
}

func TestMediaProxy_DefaultsWhenParamsAbsent(t *testing.T) {
	stub := &stubMediaUsecase{
		result: domainMedia.TransformResult{Data: []byte("x"), ContentType: "image/webp", Format: "webp"},
	}
	app := newMediaApp(stub)

	_, err := app.Test(httptest.NewRequest("GET", "/media-proxy?u=https%3A%2F%2Fcf.example-cdn.com%2Ffoo.jpg", nil))
	require.NoError(t, err)

	assert.Equal(t, 0, stub.lastRequest.Width)
	assert.Equal(t, 0, stub.lastRequest.Quality, "quality default is resolved by the usecase")
	assert.Equal(t, "webp", stub.lastRequest.Format)
}

func TestMediaProxy_FailureRedirectsToPlaceholder(t *testing.T) {
	failures := []error{
		pkgError.InvalidReferenceError("bad reference"),
		pkgError.DomainNotAllowedError("blocked"),
		pkgError.UpstreamUnavailableError("down"),
		pkgError.TranscodeFailureError("corrupt"),
	}

	for _, failure := range failures {
		app := newMediaApp(&stubMediaUsecase{err: failure})

		resp, err := app.Test(httptest.NewRequest("GET", "/media-proxy?u=https%3A%2F%2Fwhatever%2Fx.jpg", nil))
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, 302, resp.StatusCode, "failure %T must fail soft", failure)
		assert.Equal(t, "/statics/placeholder.webp", resp.Header.Get("Location"))
	}
}
