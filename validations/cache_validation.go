package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainCache "github.com/vitrina-shop/media-proxy/domains/cache"
	pkgError "github.com/vitrina-shop/media-proxy/pkg/error"
)

func ValidateCacheSettings(ctx context.Context, request domainCache.CacheSettings) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.MaxSizeMB, validation.Required, validation.Min(int64(1))),
		validation.Field(&request.TargetRatio, validation.Required, validation.Min(0.1), validation.Max(1.0)),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}
