package http

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Behnamfe76/contacts-directory/internal/observability"
	apperrors "github.com/Behnamfe76/contacts-directory/pkg/util/errorutil"
)

// NewApp builds the fiber application with the JSON error envelope as the
// fallback error handler.
func NewApp(name string, logger *zap.Logger, metrics *observability.Metrics) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			writeError(c, err, logger, metrics)
			return nil
		},
	})
}

// RegisterMiddlewares attaches global middlewares such as error handling and logging.
// The request logger runs outermost so it sees the rendered status.
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
				writeError(c, err, logger, metrics)
				err = nil
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, err error, logger *zap.Logger, metrics *observability.Metrics) {
	domainErr := apperrors.ToDomainError(err)
	route := c.Path()
	if r := c.Route(); r != nil && r.Path != "" {
		route = r.Path
	}
	metrics.RecordError(route, c.Method(), domainErr.Code)

	body := fiber.Map{
		"code":    domainErr.Code,
		"message": domainErr.Message,
	}
	if len(domainErr.Details) > 0 {
		body["details"] = domainErr.Details
	}
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed", zap.String("path", c.Path()), zap.Error(domainErr))
	}
	c.Status(domainErr.HTTPStatus)
	_ = c.JSON(fiber.Map{"error": body})
}
