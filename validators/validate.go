// Package validators holds the request validation middleware shared by the area
// validators. Each middleware parses the request, validates it with struct tags and
// stores the result in c.Locals for the controller.
package validators

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"innerspark/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Struct validates v and returns a field -> message map, empty when valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	err := validate.Struct(v)
	if err == nil {
		return errs
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["request"] = "Invalid request!"
		return errs
	}
	for _, fe := range verrs {
		errs[fieldPath(fe)] = message(fe)
	}
	return errs
}

// fieldPath drops the root struct name from the namespace: "Req.questions[0].prompt" -> "questions[0].prompt"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	kind := fe.Kind()
	switch fe.Tag() {
	case "required":
		return label + " is required!"
	case "email":
		return "Invalid email!"
	case "numeric":
		return label + " must be numeric!"
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters long!", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s!", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("%s must be at least %s characters long!", label, fe.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("%s must contain at least %s items!", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s!", label, fe.Param())
	case "max", "lte":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("%s must be at most %s characters long!", label, fe.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("%s must contain at most %s items!", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s!", label, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s!", label, humanize(fe.Param()))
	}
	return label + " is invalid!"
}

// humanize turns "previewDuration" into "Preview duration".
func humanize(field string) string {
	if field == "" {
		return "Value"
	}
	var b strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		if i == 0 && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Body parses the JSON body into a new T, validates it and stores it under key.
func Body[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errors := Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}

// Query is Body for query strings.
func Query[T any](key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(T)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		if errors := Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}

// ParamID parses the named route parameter as a positive id and stores it under key as uint.
func ParamID(param, key, label string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := strings.TrimSpace(c.Params(param))
		if raw == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, label+" ID is required!", nil)
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid "+label+" ID!", nil)
		}
		c.Locals(key, uint(id))
		return c.Next()
	}
}

// Pagination is the common page/limit query
type Pagination struct {
	Page  int `query:"page" json:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
}

// Normalize fills defaults and returns the offset.
func (p *Pagination) Normalize() (offset int) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	return (p.Page - 1) * p.Limit
}
