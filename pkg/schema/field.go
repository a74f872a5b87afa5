// Package schema derives an extraction schema from a Go struct type.
//
// The same struct drives the JSON Schema handed to the model as its response
// format, the field guide embedded in the prompt, typed decoding of the reply
// and validation of the decoded value.
package schema

import "strings"

// FieldType is the JSON Schema type of a field.
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeNumber  FieldType = "number"
	TypeInteger FieldType = "integer"
	TypeBoolean FieldType = "boolean"
	TypeArray   FieldType = "array"
	TypeObject  FieldType = "object"
)

// Field describes one struct field.
type Field struct {
	Name        string
	Type        FieldType
	Description string
	Required    bool
	Items       *Field  // array element
	Properties  []Field // object members, in declaration order
	Validators  []string
	Examples    []string
}

// ValidationError is a single failed constraint.
type ValidationError struct {
	Field   string
	Message string
	Value   any
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every failed constraint of one value.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	var sb strings.Builder
	for i, e := range errs {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(e.Error())
	}
	return sb.String()
}
