// Package validate provides struct-tag validation for request bodies.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required        field must not be zero/empty (nil pointers and empty slices included)
//	nullable        if empty, skip all remaining rules for this field
//	email           valid email address
//	objectid        24 hex characters (document id)
//	min=N           string: min char length | number: min value | slice: min length
//	max=N           string: max char length | number: max value | slice: max length
//	gt=N            number > N
//	gte=N           number >= N
//	lte=N           number <= N
//	in=a|b|c        value must be one of the listed items
//
// Pointer fields are dereferenced, so optional update inputs can carry rules:
//
//	type UpdateInput struct {
//	    Name  *string `json:"name"  validate:"nullable,min=1,max=120"`
//	    Email *string `json:"email" validate:"nullable,email"`
//	}
package validate

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	emailRE    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	objectIDRE = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)
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
		if tag == "" || !field.IsExported() {
			continue
		}

		name := jsonFieldName(field)
		rules := strings.Split(tag, ",")
		value := rv.Field(i)

		if isEmpty(value) {
			if hasRule(rules, "nullable") {
				continue
			}
			if hasRule(rules, "required") {
				errs[name] = fmt.Sprintf("The %s field is required.", name)
			}
			continue
		}

		for value.Kind() == reflect.Ptr {
			value = value.Elem()
		}
		for _, rule := range rules {
			if rule == "nullable" || rule == "required" {
				continue
			}
			if msg := applyRule(rule, name, value); msg != "" {
				errs[name] = msg
				break
			}
		}
	}

	return errs
}

// HasErrors returns true when the errs map is non-empty.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func applyRule(rule, field string, v reflect.Value) string {
	key, param, _ := strings.Cut(rule, "=")
	raw := fmt.Sprintf("%v", v.Interface())

	switch key {
	case "email":
		if !emailRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid email address.", field)
		}
	case "objectid":
		if !objectIDRE.MatchString(raw) {
			return fmt.Sprintf("The %s must be a valid id.", field)
		}
	case "in":
		for _, opt := range strings.Split(param, "|") {
			if raw == opt {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	case "min", "max":
		limit, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return ""
		}
		size, kind := measure(v)
		if (key == "min" && size < limit) || (key == "max" && size > limit) {
			word := "at least"
			if key == "max" {
				word = "at most"
			}
			return fmt.Sprintf("The %s must be %s %s%s.", field, word, param, kind)
		}
	case "gt", "gte", "lte":
		limit, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return ""
		}
		n, ok := number(v)
		if !ok {
			return fmt.Sprintf("The %s must be a number.", field)
		}
		switch {
		case key == "gt" && n <= limit:
			return fmt.Sprintf("The %s must be greater than %s.", field, param)
		case key == "gte" && n < limit:
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		case key == "lte" && n > limit:
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}
	}
	return ""
}

func measure(v reflect.Value) (float64, string) {
	switch v.Kind() {
	case reflect.String:
		return float64(utf8.RuneCountInString(v.String())), " characters"
	case reflect.Slice, reflect.Map, reflect.Array:
		return float64(v.Len()), " items"
	}
	n, _ := number(v)
	return n, ""
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.String:
		f, err := strconv.ParseFloat(v.String(), 64)
		return f, err == nil
	}
	return 0, false
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	}
	return v.IsZero()
}

func hasRule(rules []string, name string) bool {
	for _, r := range rules {
		if r == name {
			return true
		}
	}
	return false
}

func jsonFieldName(f reflect.StructField) string {
	tag := f.Tag.Get("json")
	if tag == "" || tag == "-" {
		return f.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return f.Name
	}
	return name
}
