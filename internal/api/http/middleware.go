package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/civicdesk/complaint-service/internal/observability"
	apperrors "github.com/civicdesk/complaint-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
	app.Use(errorHandlingMiddleware(logger, metrics))
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(nil)
			}
			if err != nil {
				err = writeError(c, logger, metrics, err)
			}
		}()
		return c.Next()
	}
}

// writeError renders err in the standard error envelope. Internal failures are
// logged with their cause and reported with a generic message.
func writeError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, err error) error {
	var domainErr *apperrors.DomainError
	if fiberErr, ok := err.(*fiber.Error); ok {
		domainErr = fromFiberError(fiberErr)
	} else {
		domainErr = apperrors.ToDomainError(err)
	}

	metrics.RecordError(c.Route().Path, c.Method(), domainErr.Code)
	if domainErr.HTTPStatus >= 500 {
		logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(domainErr))
	}

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{
		"success": false,
		"message": domainErr.Message,
		"error":   body,
	})
}

func fromFiberError(e *fiber.Error) *apperrors.DomainError {
	switch e.Code {
	case fiber.StatusNotFound:
		return apperrors.NewDomainError(apperrors.CodeNotFound, e.Message, e.Code, nil)
	case fiber.StatusMethodNotAllowed:
		return apperrors.NewDomainError(apperrors.CodeNotFound, e.Message, e.Code, nil)
	case fiber.StatusUnauthorized:
		return apperrors.NewDomainError(apperrors.CodeUnauthorized, e.Message, e.Code, nil)
	case fiber.StatusForbidden:
		return apperrors.NewDomainError(apperrors.CodeForbidden, e.Message, e.Code, nil)
	case fiber.StatusRequestTimeout:
		return apperrors.NewDomainError(apperrors.CodeInternal, e.Message, e.Code, nil)
	}
	if e.Code >= 500 {
		return apperrors.NewInternalError(e).(*apperrors.DomainError)
	}
	return apperrors.NewDomainError(apperrors.CodeValidation, e.Message, e.Code, nil)
}

// ErrorHandler is installed as fiber's ErrorHandler so errors raised outside the
// middleware chain, such as unmatched routes, share the same envelope.
func ErrorHandler(logger *zap.Logger, metrics *observability.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		return writeError(c, logger, metrics, err)
	}
}
