package api

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/service"
)

var registerTagNames sync.Once

// useJSONFieldNames makes validator report fields by their json name so
// binding errors line up with the payload keys.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

// bindJSON decodes the request body into dst and reports problems as a
// ValidationError.
func bindJSON(c *gin.Context, dst interface{}) error {
	useJSONFieldNames()
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := service.NewValidationError()
		for _, fe := range verrs {
			out.Add(fe.Field(), fieldMessage(fe))
		}
		return out
	}
	return service.NewValidationError().Add("non_field_errors", "Invalid request body.")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return service.MsgRequired
	case "email":
		return "Enter a valid email address."
	case "hexcolor":
		return "Enter a valid hex color, e.g. #E26C2D."
	case "min":
		return fmt.Sprintf("Ensure this field has at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "len":
		return fmt.Sprintf("Ensure this field has exactly %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}

// uuidParam reads a path parameter holding a uuid. A malformed id cannot
// name an existing record, so it is reported as not found.
func uuidParam(c *gin.Context, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, &service.NotFoundError{Resource: resource, ID: c.Param(name)}
	}
	return id, nil
}

func uintParam(c *gin.Context, name, resource string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, &service.NotFoundError{Resource: resource, ID: c.Param(name)}
	}
	return uint(id), nil
}

// flagQuery treats "1" and "true" as set.
func flagQuery(c *gin.Context, name string) bool {
	switch strings.ToLower(c.Query(name)) {
	case "1", "true":
		return true
	}
	return false
}

// currentUser returns the caller of a route behind AuthMiddleware.
func currentUser(c *gin.Context) (uuid.UUID, error) {
	id := middleware.UserID(c)
	if id == nil {
		return uuid.Nil, service.ErrUnauthorized
	}
	return *id, nil
}
