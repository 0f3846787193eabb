package apperrors

import (
	"net/http"
)

/*
Factories and predefined variables for the recipe platform's
business-logic errors.
*/

// =========================================================================
// Factory functions (wrap repository-level errors)
// =========================================================================

// ErrNotFound converts a repository miss (e.g. gorm.ErrRecordNotFound)
// into a 404 AppError.
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists converts a uniqueness violation into a 409.
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrInvalidOperation is the generic 400 factory for disallowed operations.
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Predefined variables (frequent, static errors)
// =========================================================================

// ErrInvalidRating rejects star values outside 1..5. Raised before any write.
var ErrInvalidRating = New(
	CodeInvalidRating,
	"rating",
	"Rating must be an integer between 1 and 5",
	http.StatusBadRequest,
)

// ErrSelfFollow rejects follow/unfollow where actor == target.
var ErrSelfFollow = New(
	CodeInvalidOperation,
	"follow",
	"Cannot follow or unfollow yourself",
	http.StatusBadRequest,
)

// ErrConcurrentUpdate is returned when the optimistic-update attempts run
// out. The caller may retry the whole operation.
var ErrConcurrentUpdate = New(
	CodeConcurrentUpdate,
	"rating",
	"Entity was modified concurrently, please retry",
	http.StatusConflict,
)

// ErrInconsistentFollowState reports a follower/following pair whose two
// sides disagree. Recoverable: the reconcile worker repairs it.
var ErrInconsistentFollowState = New(
	CodeInconsistentFollowState,
	"follow",
	"Follow relation is in an inconsistent state",
	http.StatusConflict,
)

// ErrInsufficientPermissions is used when a non-admin calls an admin action.
var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// ErrPartialFanout reports a publish fan-out that wrote some, but not all,
// notifications. Successes are kept; failures are logged, not retried.
func ErrPartialFanout(err error, failed, total int) *AppError {
	return Wrap(err, CodePartialFanout, "notification",
		"Some notifications could not be delivered", http.StatusInternalServerError).
		WithDetails(map[string]int{"failed": failed, "total": total})
}
