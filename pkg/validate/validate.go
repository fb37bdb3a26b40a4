// Package validate provides struct-tag validation for request bodies.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required        field must not be zero/empty
//	email           must contain a plausible address (local@domain)
//	numeric         any number
//	min=N           string: min char length | number: min value
//	max=N           string: max char length | number: max value
//	gte=N           number >= N
//	lte=N           number <= N
//
// Example:
//
//	type Input struct {
//	    Name  string  `json:"nombre" validate:"required,min=2,max=100"`
//	    Price float64 `json:"precio" validate:"required,gte=0"`
//	    Stock int     `json:"stock"  validate:"gte=0"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of fieldName → error message; empty map means no errors.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}

	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}

		name := jsonName(field)
		value := rv.Field(i)

		for _, rule := range strings.Split(tag, ",") {
			if msg := check(rule, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors reports whether the error map contains any entries.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func jsonName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		tag = tag[:idx]
	}
	if tag == "" {
		return field.Name
	}
	return tag
}

func check(rule string, v reflect.Value) string {
	name, param, _ := strings.Cut(rule, "=")

	switch strings.TrimSpace(name) {
	case "required":
		if v.IsZero() {
			return "is required"
		}
	case "email":
		s := v.String()
		at := strings.IndexByte(s, '@')
		if at <= 0 || at == len(s)-1 {
			return "must be a valid email address"
		}
	case "numeric":
		switch v.Kind() {
		case reflect.Int, reflect.Int64, reflect.Float64:
		case reflect.String:
			if _, err := strconv.ParseFloat(v.String(), 64); err != nil {
				return "must be numeric"
			}
		default:
			return "must be numeric"
		}
	case "min":
		return boundCheck(v, param, false)
	case "max":
		return boundCheck(v, param, true)
	case "gte":
		n, _ := strconv.ParseFloat(param, 64)
		if number(v) < n {
			return fmt.Sprintf("must be at least %s", param)
		}
	case "lte":
		n, _ := strconv.ParseFloat(param, 64)
		if number(v) > n {
			return fmt.Sprintf("must be at most %s", param)
		}
	}

	return ""
}

func boundCheck(v reflect.Value, param string, upper bool) string {
	n, err := strconv.ParseFloat(param, 64)
	if err != nil {
		return ""
	}

	var got float64
	if v.Kind() == reflect.String {
		got = float64(len(v.String()))
	} else {
		got = number(v)
	}

	if upper && got > n {
		return fmt.Sprintf("must be at most %s", param)
	}
	if !upper && got < n {
		return fmt.Sprintf("must be at least %s", param)
	}
	return ""
}

func number(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return 0
}
