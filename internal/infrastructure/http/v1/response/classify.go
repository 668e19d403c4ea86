package response

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"apikit/internal/core/apperror"
	"apikit/pkg/logger"
)

// Classify maps any failure to a transport status and an envelope.
// It is total: failures nobody recognizes fall through to 500 unknown-error.
// The original error is always logged first, with full detail.
func Classify(ctx context.Context, err error) (int, Envelope) {
	logger.Error(ctx, "request failed",
		"error", err,
		"detail", fmt.Sprintf("%+v", err),
		"kind", apperror.KindOf(err).String(),
	)

	appErr, isApp := apperror.AsError(err)
	kindIs := func(k apperror.Kind) bool { return isApp && appErr.Kind == k }

	var fieldErrs validator.ValidationErrors

	switch {
	case kindIs(apperror.KindLogic):
		return http.StatusBadRequest, Fail(http.StatusBadRequest, appErr.Message, appErr.Variables)

	case kindIs(apperror.KindValidation):
		return http.StatusPreconditionFailed, FailWithPayload(http.StatusPreconditionFailed, appErr.Data)

	case errors.As(err, &fieldErrs):
		return http.StatusPreconditionFailed, FailWithPayload(http.StatusPreconditionFailed, FieldErrors(fieldErrs))

	case kindIs(apperror.KindNotFound), errors.Is(err, apperror.ErrNoRoute):
		return http.StatusNotFound, Fail(http.StatusNotFound, MsgNotFound, nil)

	case kindIs(apperror.KindAuthentication):
		return http.StatusBadRequest, Fail(http.StatusBadRequest, appErr.Message, nil)

	case errors.Is(err, jwt.ErrTokenMalformed):
		return http.StatusBadRequest, Fail(http.StatusBadRequest, err.Error(), nil)

	// The router's own unauthorized signal shares the authorization payload.
	case kindIs(apperror.KindAuthorization), errors.Is(err, apperror.ErrUnauthorized):
		return http.StatusUnauthorized, Fail(http.StatusUnauthorized, MsgAuthorization, nil)

	case kindIs(apperror.KindForbidden):
		return http.StatusForbidden, Fail(http.StatusForbidden, MsgForbidden, nil)

	case kindIs(apperror.KindNoData), errors.Is(err, pgx.ErrNoRows):
		return http.StatusBadRequest, Fail(http.StatusBadRequest, MsgNoData, nil)

	case recognized(err):
		return http.StatusInternalServerError, Fail(http.StatusInternalServerError, MsgServerError, nil)

	default:
		return http.StatusInternalServerError, Fail(http.StatusInternalServerError, MsgUnknownError, nil)
	}
}

// recognized reports whether err belongs to a failure family the application
// knows about but has no dedicated branch for.
func recognized(err error) bool {
	if apperror.IsKind(err, apperror.KindInternal) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// FieldErrors converts validator output into a field -> message key map.
func FieldErrors(errs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = "app.validation." + fe.Tag()
	}
	return out
}
