package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Skufu/diseasepredict/internal/predict"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

type predictionService interface {
	Predict(req predict.Request) (predict.Result, error)
	Symptoms() []string
}

type routerDeps struct {
	Service      predictionService
	DB           HealthChecker
	Logger       *logrus.Logger
	StaticRoot   string
	AllowOrigins []string
}

func setupRouter(deps routerDeps) *gin.Engine {
	origins := deps.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := gin.New()
	router.Use(
		requestID(),
		requestLogger(deps.Logger),
		gin.CustomRecovery(recoverJSON(deps.Logger)),
		limitBodySize(1<<20), // 1MB max body
		cors.New(cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}),
	)

	if deps.StaticRoot != "" && fileExists(filepath.Join(deps.StaticRoot, "index.html")) {
		router.Static("/static", deps.StaticRoot)
		router.StaticFile("/", filepath.Join(deps.StaticRoot, "index.html"))
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/readyz", func(c *gin.Context) {
		if deps.DB == nil {
			c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "disabled"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := deps.DB.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"db":     fmt.Sprintf("unhealthy: %v", err),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": "ok"})
	})

	router.GET("/api/symptoms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"symptoms": deps.Service.Symptoms()})
	})

	router.POST("/predict", predictHandler(deps.Service, deps.Logger))

	return router
}

func predictHandler(svc predictionService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req predict.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, logger, &predict.RequestError{Msg: bindingMessage(err), Err: err})
			return
		}

		result, err := svc.Predict(req)
		if err != nil {
			respondError(c, logger, err)
			return
		}

		logger.WithFields(logrus.Fields{
			requestIDKey: c.GetString(requestIDKey),
			"disease":    result.Disease,
			"symptoms":   len(req.Symptoms),
		}).Info("prediction served")
		c.JSON(http.StatusOK, result)
	}
}

// respondError writes the {"error": ...} envelope. Client faults map to 4xx;
// inference failures and anything unexpected map to 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	status := http.StatusInternalServerError
	var (
		reqErr *predict.RequestError
		tooBig *http.MaxBytesError
	)
	switch {
	case errors.As(err, &tooBig):
		status = http.StatusRequestEntityTooLarge
	case errors.As(err, &reqErr):
		status = http.StatusBadRequest
	}

	entry := logger.WithFields(logrus.Fields{
		requestIDKey: c.GetString(requestIDKey),
		"status":     status,
		"error":      err.Error(),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("prediction failed")
	} else {
		entry.Warn("prediction rejected")
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func bindingMessage(err error) string {
	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
		syntax  *json.SyntaxError
		tooBig  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &verrs):
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			if fe.Tag() == "required" {
				msgs = append(msgs, field+" is required")
			} else {
				msgs = append(msgs, fmt.Sprintf("%s failed %s validation", field, fe.Tag()))
			}
		}
		return strings.Join(msgs, "; ")
	case errors.As(err, &typeErr):
		return fmt.Sprintf("%s has invalid type %s", typeErr.Field, typeErr.Value)
	case errors.As(err, &syntax), errors.Is(err, io.ErrUnexpectedEOF):
		return "malformed JSON body"
	case errors.As(err, &tooBig):
		return "request body too large"
	case errors.Is(err, io.EOF):
		return "request body is empty"
	}
	return "invalid payload"
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			requestIDKey: c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request")
		case status >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

func recoverJSON(logger *logrus.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		logger.WithFields(logrus.Fields{
			requestIDKey: c.GetString(requestIDKey),
			"panic":      fmt.Sprint(recovered),
		}).Error("panic while handling request")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func limitBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
