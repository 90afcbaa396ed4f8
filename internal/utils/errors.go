package utils

import "errors"

// Catalog errors returned by services. Callers match them with errors.Is; the
// text doubles as the API error code.
var (
    ErrNotFound             = errors.New("NOT_FOUND")
    ErrDuplicateDefinition  = errors.New("DUPLICATE_DEFINITION")
    ErrInvalidArgument      = errors.New("INVALID_ARGUMENT")
    ErrTypeMismatch         = errors.New("TYPE_MISMATCH")
    ErrCrossListingMismatch = errors.New("CROSS_LISTING_MISMATCH")
    ErrInUse                = errors.New("IN_USE")
    ErrCorruptState         = errors.New("CORRUPT_STATE")
    ErrForbidden            = errors.New("FORBIDDEN")
)

// ErrorCode returns the API code and HTTP status for err. Unknown errors map
// to INTERNAL_ERROR/500.
func ErrorCode(err error) (string, int) {
    switch {
    case errors.Is(err, ErrNotFound):
        return ErrNotFound.Error(), 404
    case errors.Is(err, ErrDuplicateDefinition):
        return ErrDuplicateDefinition.Error(), 409
    case errors.Is(err, ErrInvalidArgument):
        return ErrInvalidArgument.Error(), 400
    case errors.Is(err, ErrTypeMismatch):
        return ErrTypeMismatch.Error(), 422
    case errors.Is(err, ErrCrossListingMismatch):
        return ErrCrossListingMismatch.Error(), 409
    case errors.Is(err, ErrInUse):
        return ErrInUse.Error(), 409
    case errors.Is(err, ErrForbidden):
        return ErrForbidden.Error(), 403
    case errors.Is(err, ErrCorruptState):
        return ErrCorruptState.Error(), 500
    }
    return "INTERNAL_ERROR", 500
}
