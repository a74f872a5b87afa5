package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Schema is the extraction contract for values of type T.
type Schema[T any] struct {
	Name        string
	Description string
	Fields      []Field

	validate *validator.Validate
}

// Option configures schema creation.
type Option func(*options)

type options struct {
	description string
}

// WithDescription sets the schema description shown to the model.
func WithDescription(desc string) Option {
	return func(o *options) {
		o.description = desc
	}
}

// New builds a Schema from the struct type T. Field names come from json
// tags, guidance text from description tags and constraints from validate
// tags.
func New[T any](opts ...Option) (*Schema[T], error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("schema type must be a struct, got interface")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema type must be a struct, got %v", t.Kind())
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	fields, err := structFields(t)
	if err != nil {
		return nil, err
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(sf reflect.StructField) string {
		name := jsonName(sf)
		if name == "-" {
			return ""
		}
		return name
	})

	return &Schema[T]{
		Name:        t.Name(),
		Description: o.description,
		Fields:      fields,
		validate:    v,
	}, nil
}

// MustNew is New for package-level schemas whose type is known to be valid.
func MustNew[T any](opts ...Option) *Schema[T] {
	s, err := New[T](opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Decode parses data into a new T. Syntax and type errors from
// encoding/json are wrapped, so callers can inspect them with errors.As.
func (s *Schema[T]) Decode(data []byte) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Name, err)
	}
	return v, nil
}

// Validate checks v against the validate tags of T.
func (s *Schema[T]) Validate(v *T) ValidationErrors {
	if v == nil {
		return ValidationErrors{{Field: s.Name, Message: "is nil"}}
	}

	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: s.Name, Message: err.Error()}}
	}

	errs := make(ValidationErrors, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		errs = append(errs, ValidationError{
			Field:   trimRoot(e.Namespace()),
			Message: formatValidationError(e),
			Value:   e.Value(),
		})
	}
	return errs
}

func structFields(t reflect.Type) ([]Field, error) {
	fields := make([]Field, 0, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := jsonName(sf)
		if name == "-" {
			continue
		}

		f, err := typeField(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", sf.Name, err)
		}
		f.Name = name
		f.Description = sf.Tag.Get("description")
		f.Required = !strings.Contains(sf.Tag.Get("json"), "omitempty") && sf.Type.Kind() != reflect.Ptr
		if tag := sf.Tag.Get("validate"); tag != "" {
			f.Validators = strings.Split(tag, ",")
		}
		if examples := sf.Tag.Get("examples"); examples != "" {
			f.Examples = strings.Split(examples, ",")
		}

		fields = append(fields, f)
	}

	return fields, nil
}

func typeField(t reflect.Type) (Field, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return Field{Type: TypeString}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Field{Type: TypeInteger}, nil
	case reflect.Float32, reflect.Float64:
		return Field{Type: TypeNumber}, nil
	case reflect.Bool:
		return Field{Type: TypeBoolean}, nil
	case reflect.Slice:
		item, err := typeField(t.Elem())
		if err != nil {
			return Field{}, err
		}
		return Field{Type: TypeArray, Items: &item}, nil
	case reflect.Struct:
		props, err := structFields(t)
		if err != nil {
			return Field{}, err
		}
		return Field{Type: TypeObject, Properties: props}, nil
	default:
		return Field{}, fmt.Errorf("unsupported type %v", t.Kind())
	}
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "-" {
		return "-"
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return sf.Name
}

// trimRoot drops the leading struct name validator puts on namespaces.
func trimRoot(ns string) string {
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		if k := e.Kind(); k == reflect.Slice || k == reflect.Map {
			return "is missing or null"
		}
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
