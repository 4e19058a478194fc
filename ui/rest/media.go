package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	domainMedia "github.com/vitrina-shop/media-proxy/domains/media"
	pkgError "github.com/vitrina-shop/media-proxy/pkg/error"
)

type Media struct {
	Service         domainMedia.IMediaUsecase
	PlaceholderPath string
}

func InitRestMedia(app fiber.Router, service domainMedia.IMediaUsecase, placeholderPath string) Media {
	rest := Media{Service: service, PlaceholderPath: placeholderPath}
	app.Get("/media-proxy", rest.Proxy)

	return rest
}

// Proxy serves GET /media-proxy?u=<reference>&w=<width>&q=<quality>&fm=<format>.
// Every failure class redirects to the placeholder asset so <img>
// consumers degrade visually instead of breaking; the endpoint never
// returns an error status.
func (handler *Media) Proxy(c *fiber.Ctx) error {
	reference := c.Query("u")
	if reference == "" {
		reference = c.Query("url")
	}

	request := domainMedia.TransformRequest{
		SourceReference: reference,
		Width:           c.QueryInt("w", 0),
		Quality:         c.QueryInt("q", 0),
		Format:          c.Query("fm", "webp"),
	}

	result, err := handler.Service.Transform(c.UserContext(), request)
	if err != nil {
		if generic, ok := err.(pkgError.GenericError); ok {
			logrus.Debugf("[MEDIA] %s: %s", generic.ErrCode(), generic.Error())
		} else {
			logrus.WithError(err).Debug("[MEDIA] Transform failed")
		}
		return c.Redirect(handler.PlaceholderPath, fiber.StatusFound)
	}

	c.Set(fiber.HeaderContentType, result.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	if result.CacheHit {
		c.Set("X-Cache", "HIT")
	} else {
		c.Set("X-Cache", "MISS")
	}
	return c.Send(result.Data)
}
