package dynamodb

import (
	"errors"
	"fmt"

	"github.com/aws/smithy-go"

	"retrogames/domain/catalog"
	apperrors "retrogames/pkg/errors"
)

// classifyError converts DynamoDB API errors into application errors. A failed
// existence condition means the record is not there.
func classifyError(operation, table string, err error) error {
	if err == nil {
		return nil
	}

	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return apperrors.NewDatabaseError(operation, err).
			WithDetails(map[string]interface{}{"table": table})
	}

	details := map[string]interface{}{
		"table": table,
		"code":  ae.ErrorCode(),
	}

	switch ae.ErrorCode() {
	case "ConditionalCheckFailedException":
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, ae.ErrorMessage())

	case "ProvisionedThroughputExceededException", "RequestLimitExceeded", "ThrottlingException":
		details["retryable"] = true
		return apperrors.NewDatabaseError(operation, err).WithDetails(details)

	case "ValidationException":
		details["message"] = ae.ErrorMessage()
		return apperrors.NewDatabaseError(operation, err).WithDetails(details)

	case "ResourceNotFoundException":
		// A missing table is a deployment fault, not a missing record.
		details["message"] = "table not found"
		return apperrors.NewDatabaseError(operation, err).WithDetails(details)

	default:
		return apperrors.NewDatabaseError(operation, err).WithDetails(details)
	}
}
