package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/config"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/media"
)

const defaultBodyLimit = 4 * 1024 * 1024

type (
	// Services are the resources the HTTP API exposes, one interface each.
	Services struct {
		Auth         AuthService
		Users        UserService
		Projects     ProjectService
		JoinRequests JoinRequestService
		Tags         TagService
		Categories   CategoryService
		Comments     CommentService
		Posts        PostService
	}

	HTTPServer struct {
		app         *fiber.App
		cfg         *config.Config
		logger      *zap.SugaredLogger
		handleError fiber.ErrorHandler

		auth         AuthService
		users        UserService
		projects     ProjectService
		joinRequests JoinRequestService
		tags         TagService
		categories   CategoryService
		comments     CommentService
		posts        PostService
	}
)

func NewHTTPServer(lc fx.Lifecycle, cfg *config.Config, services Services, logger *zap.SugaredLogger) *HTTPServer {
	instance := New(cfg, services, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				listen := cfg.Host + ":" + cfg.Port
				logger.Infow("Starting HTTP server.", "listen", listen)
				if err := instance.app.Listen(listen); err != nil {
					logger.Fatalw("shutting down the server", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stopping HTTP server.")
			return instance.app.Shutdown()
		},
	})

	return instance
}

// New builds the fiber application with every route registered.
func New(cfg *config.Config, services Services, logger *zap.SugaredLogger) *HTTPServer {
	bodyLimit := defaultBodyLimit
	if limit := int(cfg.MediaMaxBytes) + 64*1024; limit > bodyLimit {
		bodyLimit = limit
	}

	handleError := errorHandler(logger)
	app := fiber.New(fiber.Config{
		ErrorHandler: handleError,
		BodyLimit:    bodyLimit,
	})

	instance := HTTPServer{
		app:          app,
		cfg:          cfg,
		logger:       logger,
		handleError:  handleError,
		auth:         services.Auth,
		users:        services.Users,
		projects:     services.Projects,
		joinRequests: services.JoinRequests,
		tags:         services.Tags,
		categories:   services.Categories,
		comments:     services.Comments,
		posts:        services.Posts,
	}

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(instance.AccessLogMiddleware)

	if cfg.MediaDriver == config.MediaDriverLocal && cfg.MediaLocalPath != "" {
		app.Static(media.LocalURLPrefix, cfg.MediaLocalPath)
	}

	api := app.Group("/api/v1", instance.AuthMiddleware)
	api.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	api.Post("/auth", instance.Login)

	usersG := api.Group("/users")
	usersG.Get("", instance.UserList)
	usersG.Post("", instance.UserRegister)
	usersG.Post("/heart", instance.UserHeart)
	usersG.Get("/:id", instance.UserGet)
	usersG.Put("/:id", instance.UserUpdate)
	usersG.Delete("/:id", instance.UserDelete)
	usersG.Put("/:id/image", instance.UserSetImage)
	usersG.Post("/:id/heart", instance.UserToggleHeart)

	projectsG := api.Group("/projects")
	projectsG.Get("", instance.ProjectList)
	projectsG.Post("", instance.ProjectCreate)
	projectsG.Post("/heart", instance.ProjectHeart)
	projectsG.Get("/:id", instance.ProjectGet)
	projectsG.Put("/:id", instance.ProjectUpdate)
	projectsG.Delete("/:id", instance.ProjectDelete)
	projectsG.Post("/:id/heart", instance.ProjectToggleHeart)
	projectsG.Post("/:id/members/:userID", instance.ProjectAddMember)
	projectsG.Delete("/:id/members/:userID", instance.ProjectRemoveMember)
	projectsG.Post("/:id/admins/:userID", instance.ProjectAddAdmin)
	projectsG.Delete("/:id/admins/:userID", instance.ProjectRemoveAdmin)
	projectsG.Get("/:id/join-requests", instance.JoinRequestList)
	projectsG.Post("/:id/join-requests", instance.JoinRequestCreate)

	joinG := api.Group("/join-requests")
	joinG.Delete("/:id", instance.JoinRequestWithdraw)
	joinG.Post("/:id/approve", instance.JoinRequestApprove)
	joinG.Post("/:id/reject", instance.JoinRequestReject)

	tagG := api.Group("/tags")
	tagG.Get("", instance.TagList)
	tagG.Post("", instance.TagCreate)
	tagG.Put("/:id", instance.TagUpdate)
	tagG.Delete("/:id", instance.TagDelete)

	categoryG := api.Group("/categories")
	categoryG.Get("", instance.CategoryList)
	categoryG.Post("", instance.CategoryCreate)
	categoryG.Put("/:id", instance.CategoryUpdate)
	categoryG.Delete("/:id", instance.CategoryDelete)

	commentG := api.Group("/comments")
	commentG.Get("", instance.CommentList)
	commentG.Post("", instance.CommentCreate)
	commentG.Put("/:id", instance.CommentUpdate)
	commentG.Delete("/:id", instance.CommentDelete)

	postG := api.Group("/posts")
	postG.Get("", instance.PostList)
	postG.Post("", instance.PostCreate)
	postG.Get("/:id", instance.PostGet)
	postG.Put("/:id", instance.PostUpdate)
	postG.Delete("/:id", instance.PostDelete)

	return &instance
}

func (s *HTTPServer) App() *fiber.App {
	return s.app
}

// AccessLogMiddleware logs every request once it has been handled. Passwords in JSON
// bodies are censored.
func (s *HTTPServer) AccessLogMiddleware(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// let the error handler set the final status before it is logged
		if herr := s.handleError(c, err); herr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	fields := []interface{}{
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start),
	}
	if body := c.Body(); len(body) != 0 && c.Is("json") {
		fields = append(fields, "body", string(censorBody(body)))
	}
	s.logger.Infow("request", fields...)
	return nil
}

func errorHandler(logger *zap.SugaredLogger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var (
			verr   *apperr.ValidationError
			appErr *apperr.Error
			ferr   *fiber.Error
		)
		switch {
		case errors.As(err, &verr):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": verr.Fields})
		case errors.As(err, &appErr):
			if appErr.Kind == apperr.ErrUnauthenticated {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"messages": []string{appErr.Message}})
			}
			return c.Status(statusOf(appErr.Kind)).JSON(fiber.Map{
				"errors": apperr.FieldErrors{appErr.Field: {appErr.Message}},
			})
		case errors.As(err, &ferr):
			return c.Status(ferr.Code).JSON(fiber.Map{"messages": []string{ferr.Message}})
		default:
			logger.Errorw("unhandled error", "method", c.Method(), "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"messages": []string{"Internal server error."}})
		}
	}
}

func statusOf(kind error) int {
	switch kind {
	case apperr.ErrForbidden:
		return fiber.StatusForbidden
	case apperr.ErrNotFound:
		return fiber.StatusNotFound
	case apperr.ErrConflict, apperr.ErrValidation:
		return fiber.StatusUnprocessableEntity
	case apperr.ErrPersistence, apperr.ErrBadRequest:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// censorBody replaces every "password" value of a JSON body, at any depth. Bodies
// that are not JSON are returned unchanged.
func censorBody(body []byte) []byte {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return body
	}
	censor(v)
	b, err := json.Marshal(v)
	if err != nil {
		return body
	}
	return b
}

func censor(v interface{}) {
	switch v := v.(type) {
	case map[string]interface{}:
		for k, nested := range v {
			if k == "password" {
				v[k] = "$censored"
				continue
			}
			censor(nested)
		}
	case []interface{}:
		for _, nested := range v {
			censor(nested)
		}
	}
}
