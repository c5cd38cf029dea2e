package transport

import (
	"encoding/base64"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"

	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/apperr"
	"github.com/Rogue-Bear-Innovations/thinkspace-back/internal/models"
)

const actorKey = "actor"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return ""
	})
	return v
}

// AuthMiddleware resolves the actor from a Bearer token or Basic credentials. Requests
// without an Authorization header go through anonymously.
func (s *HTTPServer) AuthMiddleware(c *fiber.Ctx) error {
	header := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if header == "" {
		return c.Next()
	}

	scheme, credentials := header, ""
	if i := strings.IndexByte(header, ' '); i > 0 {
		scheme, credentials = header[:i], strings.TrimSpace(header[i+1:])
	}

	var (
		user *models.User
		err  error
	)
	switch strings.ToLower(scheme) {
	case "bearer":
		user, err = s.auth.Authenticate(c.Context(), credentials)
	case "basic":
		username, password, ok := parseBasic(credentials)
		if !ok {
			return apperr.Unauthenticated("You were not successfully authenticated.")
		}
		user, err = s.auth.BasicAuth(c.Context(), username, password)
	default:
		return apperr.Unauthenticated("No token was supplied, or token is invalid.")
	}
	if err != nil {
		return err
	}

	c.Locals(actorKey, user)
	return c.Next()
}

func parseBasic(credentials string) (string, string, bool) {
	raw, err := base64.StdEncoding.DecodeString(credentials)
	if err != nil {
		return "", "", false
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// GetActor returns the authenticated user, or nil for anonymous requests.
func GetActor(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(actorKey).(*models.User)
	return user
}

////////

// BindAndValidate decodes a JSON body into v and validates it. An empty body skips the
// decoding so optional bodies still validate.
func BindAndValidate(c *fiber.Ctx, v interface{}) error {
	if len(c.Body()) != 0 {
		if err := c.BodyParser(v); err != nil {
			return apperr.BadRequest("body", err.Error())
		}
	}
	return Validate(v)
}

func BindQueryAndValidate(c *fiber.Ctx, v interface{}) error {
	if err := c.QueryParser(v); err != nil {
		return apperr.BadRequest("query", err.Error())
	}
	return Validate(v)
}

func Validate(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.BadRequest("body", err.Error())
	}
	verr := &apperr.ValidationError{}
	for _, fe := range fieldErrs {
		verr.Add(fe.Field(), validationMessage(fe))
	}
	return verr
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Missing data for required field."
	case "email":
		return "Not a valid email address."
	case "url":
		return "Not a valid URL."
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.Join(strings.Fields(fe.Param()), ", "))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Shorter than minimum length %s.", fe.Param())
		}
		return fmt.Sprintf("Must be greater than or equal to %s.", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("Longer than maximum length %s.", fe.Param())
		}
		return fmt.Sprintf("Must be less than or equal to %s.", fe.Param())
	default:
		return "Invalid value."
	}
}

func GetAndParseParam(c *fiber.Ctx, name string) (uint64, error) {
	v := c.Params(name)
	id, err := strconv.ParseUint(v, 10, 64)
	if v == "" || err != nil {
		return 0, apperr.BadRequest(name, fmt.Sprintf("invalid path param '%s'", name))
	}
	return id, nil
}
