package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"luna/api"
	"luna/internal/generated/servers"
	"luna/internal/pkg/telemetry"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// LoadContract parses and validates the embedded OpenAPI document.
func LoadContract() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(api.OpenAPI)
	if err != nil {
		return nil, fmt.Errorf("load openapi contract: %w", err)
	}
	if err = doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validate openapi contract: %w", err)
	}
	return doc, nil
}

// RequestValidator checks requests to contract routes against doc. Other
// routes pass through untouched.
func RequestValidator(doc *openapi3.T) (echo.MiddlewareFunc, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build contract router: %w", err)
	}

	options := &openapi3filter.Options{
		MultiError:         true,
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			route, pathParams, findErr := router.FindRoute(req)
			if findErr != nil {
				return next(c)
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    req,
				PathParams: pathParams,
				Route:      route,
				Options:    options,
			}
			if err := openapi3filter.ValidateRequest(req.Context(), input); err != nil {
				return c.JSON(http.StatusBadRequest, servers.Error{
					Code:    http.StatusBadRequest,
					Message: err.Error(),
				})
			}
			return next(c)
		}
	}, nil
}

// contractDoc serves the contract to swagger UI.
type contractDoc struct {
	json string
}

func (d contractDoc) ReadDoc() string { return d.json }

var registerDocOnce sync.Once

func registerDoc(doc *openapi3.T) error {
	data, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode openapi contract: %w", err)
	}
	registerDocOnce.Do(func() {
		swag.Register(swag.Name, contractDoc{json: string(data)})
	})
	return nil
}

// NewRouter builds the echo instance: the contract routes behind request
// validation, plus /health, /metrics and /swagger/*.
func NewRouter(server *Server, logger *zap.Logger) (*echo.Echo, error) {
	doc, err := LoadContract()
	if err != nil {
		return nil, err
	}
	validator, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}
	if err = registerDoc(doc); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger.With(zap.String("component", "http"))))

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(telemetry.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Use(validator)
	servers.RegisterHandlers(e, server)

	return e, nil
}

func requestLogger(logger *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency.Round(time.Microsecond)),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Debug("request", fields...)
			return nil
		},
	})
}
