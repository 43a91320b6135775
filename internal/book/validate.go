package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON keys rather than Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// validateInput checks that every required field of in is present.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()

		var message string
		switch fe.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", field)
		case "min":
			message = fmt.Sprintf("%s must not be empty", field)
		default:
			message = fmt.Sprintf("%s is invalid", field)
		}
		fields = append(fields, FieldError{Field: field, Message: message})
	}
	return newValidationError(fields...)
}

// DecodeCreateInput reads a create payload from r. Malformed JSON and values
// of the wrong type are reported as *ValidationError; missing fields are left
// for the service to reject.
func DecodeCreateInput(r io.Reader) (CreateInput, error) {
	var in CreateInput
	if err := decodeJSON(r, &in); err != nil {
		return CreateInput{}, err
	}
	return in, nil
}

// DecodeUpdateInput reads an update payload from r. An "isbn" key in the
// payload is ignored.
func DecodeUpdateInput(r io.Reader) (UpdateInput, error) {
	var in UpdateInput
	if err := decodeJSON(r, &in); err != nil {
		return UpdateInput{}, err
	}
	return in, nil
}

// decodeJSON reads exactly one JSON value from r into dst. Keys must match a
// json tag of dst exactly; keys that differ only in case are treated as
// unknown and dropped.
func decodeJSON(r io.Reader, dst any) error {
	dec := json.NewDecoder(r)

	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&json.RawMessage{}); !errors.Is(err, io.EOF) {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return newValidationError(FieldError{Field: "body", Message: "request body must contain a single JSON object"})
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return decodeError(err)
	}
	if obj == nil {
		return newValidationError(FieldError{Field: "body", Message: "request body must be a JSON object"})
	}

	keys := jsonKeys(reflect.TypeOf(dst))
	for k := range obj {
		if !keys[k] {
			delete(obj, k)
		}
	}

	exact, err := json.Marshal(obj)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(exact, dst); err != nil {
		return decodeError(err)
	}
	return nil
}

func decodeError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return err
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		// Field is a dotted path that may include embedded struct names.
		field := typeErr.Field[strings.LastIndex(typeErr.Field, ".")+1:]
		if field == "" {
			return newValidationError(FieldError{Field: "body", Message: "request body must be a JSON object"})
		}
		if isInteger(typeErr.Type) && strings.HasPrefix(typeErr.Value, "number") && !strings.ContainsAny(typeErr.Value, ".eE") {
			return newValidationError(FieldError{
				Field:   field,
				Message: fmt.Sprintf("%s is out of range", field),
			})
		}
		return newValidationError(FieldError{
			Field:   field,
			Message: fmt.Sprintf("%s must be %s", field, jsonTypeName(typeErr.Type)),
		})
	}

	if errors.Is(err, io.EOF) {
		return newValidationError(FieldError{Field: "body", Message: "request body is required"})
	}
	return newValidationError(FieldError{Field: "body", Message: "request body is not valid JSON"})
}

// jsonKeys lists the json tag names of struct type t, including promoted
// fields of embedded structs.
func jsonKeys(t reflect.Type) map[string]bool {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	keys := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			for k := range jsonKeys(f.Type) {
				keys[k] = true
			}
			continue
		}
		if name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]; name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}

func isInteger(t reflect.Type) bool {
	if t == nil {
		return false
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "of a different type"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "an integer"
	default:
		return "of type " + t.String()
	}
}
