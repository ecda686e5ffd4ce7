package azure

import (
	"context"
	"errors"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/sealdb/azurefs/internal/errs"
)

// mapError translates an Azure SDK error into a *errs.Error, preserving
// the storage error code and HTTP status for the caller's error message.
func mapError(err error, msg string) *errs.Error {
	if err == nil {
		return nil
	}

	// Context cancellation / deadline
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.KindIO, msg, err)
	}

	// The SDK surfaces service failures as *azcore.ResponseError carrying
	// the x-ms-error-code header and HTTP status.
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		kind := errs.KindIO

		switch bloberror.Code(respErr.ErrorCode) {
		case bloberror.BlobNotFound, bloberror.ContainerNotFound:
			kind = errs.KindNotFound
		case bloberror.AuthenticationFailed,
			bloberror.AuthorizationFailure,
			bloberror.AuthorizationPermissionMismatch,
			bloberror.InvalidAuthenticationInfo,
			bloberror.InsufficientAccountPermissions:
			kind = errs.KindPermissionDenied
		default:
			switch respErr.StatusCode {
			case http.StatusNotFound:
				kind = errs.KindNotFound
			case http.StatusForbidden, http.StatusUnauthorized:
				kind = errs.KindPermissionDenied
			}
		}

		return errs.Wrap(kind, msg, err).WithBackend(respErr.ErrorCode, respErr.StatusCode)
	}

	// Anything else — treat as a generic transport failure.
	return errs.Wrap(errs.KindIO, msg, err)
}
