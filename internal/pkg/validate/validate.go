package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// v is the package-level singleton validator. It is initialised once at
// package load time. Any custom type registrations must be made during init()
// before the first call to Struct.
var v = validator.New()

// Error carries one message per failed field so handlers can return the
// full list instead of a single joined string.
type Error struct {
	Fields []string
}

func (e *Error) Error() string {
	return strings.Join(e.Fields, "; ")
}

// Struct validates the given struct using its validate tags.
// Returns an *Error listing every failed field, or nil.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	e := &Error{}
	for _, fe := range ve {
		e.Fields = append(e.Fields, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
	}
	return e
}
