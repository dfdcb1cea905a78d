package mapper

import (
	"errors"

	"github.com/potgreen/nursery-backend/internal/domains/orders/application"
	"github.com/potgreen/nursery-backend/internal/domains/orders/domain"
	apierrors "github.com/potgreen/nursery-backend/internal/shared/errors"
)

// ProblemFromError maps orders application errors to problem details. It
// satisfies apierrors.ErrorMapper.
func ProblemFromError(err error) (apierrors.ProblemDetail, bool) {
	var (
		transitionErr *domain.TransitionError
		conflictErr   *application.ConflictError
		validationErr *application.ValidationError
	)
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		return apierrors.ErrUnauthorized.WithDetail("a valid admin bearer token is required"), true
	case errors.As(err, &transitionErr):
		return apierrors.ErrInvalidTransition.
			WithDetail(transitionErr.Error()).
			WithExtension("currentStatus", string(transitionErr.Current)).
			WithExtension("requestedStatus", string(transitionErr.Requested)).
			WithExtension("allowedStatuses", StatusStrings(transitionErr.Allowed)), true
	case errors.As(err, &conflictErr):
		return apierrors.ErrConflict.
			WithDetail(conflictErr.Error()).
			WithExtension("currentStatus", string(conflictErr.Current)).
			WithExtension("requestedStatus", string(conflictErr.Requested)).
			WithExtension("allowedStatuses", StatusStrings(conflictErr.Allowed)), true
	case errors.Is(err, application.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail("order not found"), true
	case errors.As(err, &validationErr):
		return apierrors.NewValidationProblem(validationErr.Fields).WithDetail(validationErr.Error()), true
	case errors.Is(err, application.ErrValidation):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, application.ErrTimeout):
		return apierrors.ErrTimeout.WithDetail("order store did not respond in time"), true
	case errors.Is(err, application.ErrUnavailable):
		return apierrors.ErrUnavailable.WithDetail("order store unavailable, retry with backoff"), true
	}
	return apierrors.ProblemDetail{}, false
}
