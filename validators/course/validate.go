package courseValidator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"lms/middleware"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.SplitN(f.Tag.Get("query"), ",", 2)[0]
		}
		return name
	})
	return v
}

// fieldErrors runs the struct tags and returns one message per failing field,
// keyed by its json path.
func fieldErrors(s interface{}) map[string]string {
	errs := make(map[string]string)
	err := validate.Struct(s)
	if err == nil {
		return errs
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		errs["body"] = err.Error()
		return errs
	}
	for _, fe := range ves {
		key := fe.Namespace()
		if i := strings.Index(key, "."); i >= 0 {
			key = key[i+1:]
		}
		errs[key] = message(fe)
	}
	return errs
}

func message(fe validator.FieldError) string {
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required!", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s!", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s!", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s!", field, fe.Param())
	case "email":
		return "Invalid email!"
	case "required_if":
		return fmt.Sprintf("%s is required for this content type!", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL!", field)
	default:
		return fmt.Sprintf("%s is invalid!", field)
	}
}

// paramID reads a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (int, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Params(name)))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// IDParams stores the named route parameters in Locals under their
// camel-cased key, e.g. course_id becomes courseID.
func IDParams(names ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, name := range names {
			id, ok := paramID(c, name)
			if !ok {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label(name)+"!", nil)
			}
			c.Locals(localKey(name), id)
		}
		return c.Next()
	}
}

func localKey(param string) string {
	switch param {
	case "id":
		return "courseID"
	case "user_id":
		return "targetUserID"
	}
	parts := strings.Split(param, "_")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "id" {
			parts[i] = "ID"
		}
	}
	return strings.Join(parts, "")
}

func label(param string) string {
	if param == "id" {
		return "Course ID"
	}
	parts := strings.Split(param, "_")
	for i, p := range parts {
		if p == "id" {
			parts[i] = "ID"
		} else if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// Pagination is the page/limit query shared by list endpoints.
type Pagination struct {
	Page  int `query:"page" validate:"min=1"`
	Limit int `query:"limit" validate:"min=1,max=100"`
}

// List parses optional page/limit query values, defaulting to 1 and 10.
func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &Pagination{Page: 1, Limit: 10}
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if errs := fieldErrors(reqData); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}

		c.Locals("pagination", reqData)
		return c.Next()
	}
}
