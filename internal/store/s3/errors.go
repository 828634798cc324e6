package s3

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/nrollins/bucketsync/internal/domain"
)

// mapError translates SDK errors to domain sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &noBucket) || errors.As(err, &notFound) {
		return domain.ErrNotFound
	}

	var owned *types.BucketAlreadyOwnedByYou
	var exists *types.BucketAlreadyExists
	if errors.As(err, &owned) || errors.As(err, &exists) {
		return domain.ErrAlreadyExists
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return domain.ErrNotFound
		case "BucketAlreadyOwnedByYou", "BucketAlreadyExists":
			return domain.ErrAlreadyExists
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, apiErr.ErrorMessage())
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return err
}
