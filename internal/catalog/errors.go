package catalog

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	merrors "github.com/arkilian/glue-metastore/internal/errors"
)

// FromRemote classifies an error returned by the Glue client.
// The SDK error stays in the chain, so errors.As still finds the Glue
// exception types. Already classified errors pass through untouched.
func FromRemote(op string, err error) error {
	if err == nil {
		return nil
	}
	var me *merrors.MetastoreError
	if errors.As(err, &me) {
		return err
	}

	code := merrors.CodeRemoteFailure
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code = CodeFor(apiErr.ErrorCode())
	}
	return merrors.NewRemoteError(code, fmt.Sprintf("glue %s failed", op), err).
		WithDetails(map[string]interface{}{"operation": op})
}

// IsEntityNotFound reports whether err is a Glue EntityNotFoundException.
func IsEntityNotFound(err error) bool {
	return merrors.GetCode(err) == merrors.CodeEntityNotFound
}

// CodeFor maps a Glue error code, as carried by an API error or a batch
// ErrorDetail, to a metastore error code.
func CodeFor(apiCode string) string {
	switch apiCode {
	case "EntityNotFoundException":
		return merrors.CodeEntityNotFound
	case "AlreadyExistsException":
		return merrors.CodeAlreadyExists
	case "InvalidInputException", "ValidationException":
		return merrors.CodeInvalidInput
	case "AccessDeniedException":
		return merrors.CodeAccessDenied
	case "ThrottlingException", "ResourceNumberLimitExceededException":
		return merrors.CodeThrottled
	case "ConcurrentModificationException":
		return merrors.CodeConcurrentModification
	case "OperationTimeoutException":
		return merrors.CodeOperationTimeout
	case "InternalServiceException":
		return merrors.CodeServiceFailure
	default:
		return merrors.CodeRemoteFailure
	}
}
