package usecase

import (
	"context"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	domainMedia "github.com/vitrina-shop/media-proxy/domains/media"
	"github.com/vitrina-shop/media-proxy/pkg/allowlist"
	"github.com/vitrina-shop/media-proxy/pkg/diskcache"
	pkgError "github.com/vitrina-shop/media-proxy/pkg/error"
	"github.com/vitrina-shop/media-proxy/pkg/transcode"
	"github.com/vitrina-shop/media-proxy/pkg/urlnorm"
)

var transcodeFn = transcode.Transcode

type mediaService struct {
	guard          *allowlist.Guard
	store          *diskcache.Store
	fetcher        domainMedia.IUpstreamFetcher
	budget         *CacheBudget
	defaultQuality int
	group          singleflight.Group
}

func NewMediaService(
	guard *allowlist.Guard,
	store *diskcache.Store,
	fetcher domainMedia.IUpstreamFetcher,
	budget *CacheBudget,
	defaultQuality int,
) domainMedia.IMediaUsecase {
	if defaultQuality <= 0 {
		defaultQuality = 72
	}
	return &mediaService{
		guard:          guard,
		store:          store,
		fetcher:        fetcher,
		budget:         budget,
		defaultQuality: defaultQuality,
	}
}

func (s *mediaService) Transform(ctx context.Context, request domainMedia.TransformRequest) (domainMedia.TransformResult, error) {
	normalized, ok := urlnorm.Normalize(request.SourceReference)
	if !ok {
		return domainMedia.TransformResult{}, pkgError.InvalidReferenceError(
			fmt.Sprintf("reference %q could not be resolved to an https URL", request.SourceReference))
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return domainMedia.TransformResult{}, pkgError.InvalidReferenceError(err.Error())
	}
	host := parsed.Hostname()
	if !s.guard.IsAllowed(host) {
		s.guard.WarnBlocked(host)
		return domainMedia.TransformResult{}, pkgError.DomainNotAllowedError(
			fmt.Sprintf("host %q is not an approved upstream", host))
	}

	format := transcode.NormalizeFormat(request.Format)
	width := transcode.ClampWidth(request.Width)
	quality := request.Quality
	if quality <= 0 {
		quality = s.defaultQuality
	}
	quality = transcode.ClampQuality(quality)

	// Cache lookup. A read error of any kind is a miss: an eviction
	// pass may delete the file between a stat and the read, and that
	// must fall through to a fresh fetch rather than fail the request.
	key := diskcache.Key(normalized, width, quality, format)
	if data, err := s.store.Read(key, transcode.ExtensionFor(format)); err == nil {
		return domainMedia.TransformResult{
			Data:        data,
			ContentType: transcode.ContentTypeFor(format),
			Format:      format,
			CacheHit:    true,
		}, nil
	}

	// Identical concurrent misses share one fetch+transcode.
	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.fill(ctx, normalized, width, quality, format)
	})
	if err != nil {
		return domainMedia.TransformResult{}, err
	}
	return v.(domainMedia.TransformResult), nil
}

// fill runs the miss path: fetch, transcode, store, trigger eviction.
// Failures leave no on-disk trace so the next request retries the whole
// pipeline once the upstream recovers.
func (s *mediaService) fill(ctx context.Context, normalizedURL string, width, quality int, format string) (domainMedia.TransformResult, error) {
	body, _, err := s.fetcher.Fetch(ctx, normalizedURL)
	if err != nil {
		logrus.WithError(err).Debugf("[MEDIA] Upstream fetch failed for %s", normalizedURL)
		return domainMedia.TransformResult{}, pkgError.UpstreamUnavailableError(err.Error())
	}

	data, actualFormat, err := transcodeFn(body, width, quality, format)
	if err != nil {
		logrus.WithError(err).Warnf("[MEDIA] Transcode failed for %s", normalizedURL)
		return domainMedia.TransformResult{}, pkgError.TranscodeFailureError(err.Error())
	}

	// The entry is stored under the format that actually got produced.
	// After a webp fallback the requested-format key stays vacant, so it
	// can never serve bytes of the wrong format.
	actualKey := diskcache.Key(normalizedURL, width, quality, actualFormat)
	if err := s.store.Write(actualKey, transcode.ExtensionFor(actualFormat), data); err != nil {
		// Serving from memory still works; the entry is simply not
		// reusable for the next request.
		logrus.WithError(err).Warnf("[MEDIA] Could not persist cache entry %s", actualKey)
	} else {
		s.store.MaybeEvict(s.budget.Get())
	}

	return domainMedia.TransformResult{
		Data:        data,
		ContentType: transcode.ContentTypeFor(actualFormat),
		Format:      actualFormat,
	}, nil
}
