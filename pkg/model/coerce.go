package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Built-in type names.
const (
	TypeString  = "String"
	TypeBoolean = "Boolean"
	TypeInteger = "Integer"
	TypeReal    = "Real"
	// TypeElement is the type of properties holding arbitrary generic content.
	TypeElement = "Element"
)

// IsSimple reports whether typeName is a primitive value type.
func IsSimple(typeName string) bool {
	switch typeName {
	case TypeString, TypeBoolean, TypeInteger, TypeReal:
		return true
	default:
		return false
	}
}

func isBuiltin(typeName string) bool {
	return IsSimple(typeName) || typeName == TypeElement
}

// Coerce converts lexical text into a value of the given primitive type.
// Non-primitive type names return the text unchanged.
func Coerce(typeName, text string) (any, error) {
	switch typeName {
	case TypeBoolean:
		return text == "true", nil
	case TypeInteger:
		v, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("invalid %s value <%s>", typeName, text)
		}
		return v, nil
	case TypeReal:
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value <%s>", typeName, text)
		}
		return v, nil
	default:
		return text, nil
	}
}

// Format returns the lexical form of a primitive value.
func Format(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case fmt.Stringer:
		return value.String()
	default:
		return fmt.Sprint(value)
	}
}

// EqualValue reports whether two primitive values are equal.
// Non-primitive values are never equal.
func EqualValue(a, b any) bool {
	switch a.(type) {
	case string, bool, int, int64, float64, float32:
	default:
		return false
	}
	switch b.(type) {
	case string, bool, int, int64, float64, float32:
	default:
		return false
	}
	return a == b
}
