package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/interface/response"
	"travel-booking-service/pkg/apperror"
)

const partialKey = "partialRecord"

// Defaulter is implemented by schemas that fill in omitted values before validation
type Defaulter interface {
	Defaults()
}

func validatedKey[T any]() string {
	return fmt.Sprintf("validated:%T", (*T)(nil))
}

// Validated returns the schema value stored by one of the Validate middlewares, or nil
func Validated[T any](c *gin.Context) *T {
	v, ok := c.Get(validatedKey[T]())
	if !ok {
		return nil
	}
	out, _ := v.(*T)
	return out
}

// PartialRecord returns the fields present in a body checked by ValidatePartialBody
func PartialRecord(c *gin.Context) entity.Record {
	v, ok := c.Get(partialKey)
	if !ok {
		return entity.Record{}
	}
	rec, _ := v.(entity.Record)
	return rec
}

// ValidateBody decodes the JSON body into T, applies defaults and validates it
func ValidateBody[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var v T
		raw, err := readBody(c)
		if err == nil {
			err = json.Unmarshal(raw, &v)
		}
		if err != nil {
			failValidation(c, decodeViolations(err, "body"))
			return
		}
		finish(c, &v)
	}
}

// ValidateQuery binds the query string into T using its form tags
func ValidateQuery[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var v T
		if err := c.ShouldBindQuery(&v); err != nil {
			failValidation(c, decodeViolations(err, "query"))
			return
		}
		finish(c, &v)
	}
}

// ValidateParams binds path parameters into T using its uri tags
func ValidateParams[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		var v T
		if err := c.ShouldBindUri(&v); err != nil {
			failValidation(c, decodeViolations(err, "params"))
			return
		}
		finish(c, &v)
	}
}

// ValidatePartialBody checks only the fields present in the JSON body against T.
// A nested object that is present is validated in full. Defaults are not applied.
func ValidatePartialBody[T any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := readBody(c)
		var fields map[string]json.RawMessage
		if err == nil {
			err = json.Unmarshal(raw, &fields)
		}
		if err == nil && fields == nil {
			err = errors.New("request body must be a JSON object")
		}
		if err != nil {
			failValidation(c, decodeViolations(err, "body"))
			return
		}

		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			failValidation(c, decodeViolations(err, "body"))
			return
		}

		known := jsonFieldNames(reflect.TypeOf(v))
		partial := entity.Record{}
		for name, value := range fields {
			if _, ok := known[name]; !ok {
				continue
			}
			var decoded interface{}
			if err := json.Unmarshal(value, &decoded); err != nil {
				failValidation(c, decodeViolations(err, name))
				return
			}
			partial[name] = decoded
		}

		var violations []apperror.FieldViolation
		for _, fv := range entity.ValidateStruct(&v) {
			if _, ok := partial[rootField(fv.Field)]; ok {
				violations = append(violations, fv)
			}
		}
		if len(violations) > 0 {
			failValidation(c, violations)
			return
		}

		c.Set(validatedKey[T](), &v)
		c.Set(partialKey, partial)
		c.Next()
	}
}

func finish[T any](c *gin.Context, v *T) {
	if d, ok := any(v).(Defaulter); ok {
		d.Defaults()
	}
	if violations := entity.ValidateStruct(v); len(violations) > 0 {
		failValidation(c, violations)
		return
	}
	c.Set(validatedKey[T](), v)
	c.Next()
}

func failValidation(c *gin.Context, violations []apperror.FieldViolation) {
	response.Fail(c, http.StatusBadRequest, "Validation failed", violations)
}

// readBody reads the request body and puts it back for later readers
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, io.EOF
	}
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, io.EOF
	}
	return raw, nil
}

func decodeViolations(err error, source string) []apperror.FieldViolation {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		return []apperror.FieldViolation{{Field: source, Message: "request body is required", Code: "required"}}
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = source
		}
		return []apperror.FieldViolation{{
			Field:   field,
			Message: fmt.Sprintf("%s must be of type %s", field, jsonKind(typeErr.Type)),
			Code:    "type",
		}}
	case errors.As(err, &syntaxErr):
		return []apperror.FieldViolation{{Field: source, Message: "request body is not valid JSON", Code: "json"}}
	}
	return []apperror.FieldViolation{{Field: source, Message: err.Error(), Code: "type"}}
}

func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "array"
	}
	return "object"
}

// rootField returns the top-level key of a violation path: "flight.origin" -> "flight"
func rootField(path string) string {
	if i := strings.IndexAny(path, ".["); i >= 0 {
		return path[:i]
	}
	return path
}

// jsonFieldNames lists the top-level JSON keys of a struct type, following embedded structs
func jsonFieldNames(t reflect.Type) map[string]struct{} {
	names := map[string]struct{}{}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "-" {
			continue
		}
		if f.Anonymous && tag == "" {
			for name := range jsonFieldNames(f.Type) {
				names[name] = struct{}{}
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		if tag == "" {
			tag = f.Name
		}
		names[tag] = struct{}{}
	}
	return names
}
