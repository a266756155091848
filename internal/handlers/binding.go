package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report fields by their JSON name so messages match the request body
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// errEmptyBody is returned when a create or update request carries no JSON
var errEmptyBody = errors.New("el cuerpo de la petición está vacío")

// BindNestedOrFlat decodes the request body into obj and runs the binding
// validators. The console sends either the flat record ({...}) or the record
// wrapped under its resource name ({"inquilino": {...}}); both are accepted.
// Fields missing from the body keep the value obj already holds, which is how
// PATCH merges onto the stored record.
func BindNestedOrFlat(c *gin.Context, key string, obj interface{}) error {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if len(bytes.TrimSpace(body)) == 0 {
		return errEmptyBody
	}

	payload := body
	var nested map[string]json.RawMessage
	if err := json.Unmarshal(body, &nested); err == nil {
		if inner, ok := nested[key]; ok && len(inner) > 0 && inner[0] == '{' {
			payload = inner
		}
	}

	if err := json.Unmarshal(payload, obj); err != nil {
		return err
	}
	if binding.Validator == nil {
		return nil
	}
	return binding.Validator.ValidateStruct(obj)
}

// bindingMessage renders a bind or validation error as a Spanish message
func bindingMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			return fmt.Sprintf("el campo %s es obligatorio", field)
		case "email":
			return fmt.Sprintf("el campo %s debe ser un correo válido", field)
		case "max":
			return fmt.Sprintf("el campo %s admite como máximo %s caracteres", field, fe.Param())
		case "min":
			return fmt.Sprintf("el campo %s requiere al menos %s caracteres", field, fe.Param())
		case "len":
			return fmt.Sprintf("el campo %s debe tener %s caracteres", field, fe.Param())
		case "oneof":
			return fmt.Sprintf("el campo %s debe ser uno de: %s", field, fe.Param())
		}
		return fmt.Sprintf("el campo %s no es válido", field)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("el campo %s tiene un tipo inválido", typeErr.Field)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return "JSON inválido"
	}
	return err.Error()
}
