// Package feeders provides configuration feeders for reading data from various sources
// including property maps, environment variables, .env files, YAML and TOML files.
//
// Every feeder implements Feed for whole-struct population and FeedKey for a named
// configuration section. Section keys are dotted ("management.health.elasticsearch") and
// feeders only touch fields whose key is present in their source, so defaults set by a
// module before feeding survive.
package feeders

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/golobby/cast"
)

var durationType = reflect.TypeOf(time.Duration(0))

// fieldVisitor is called for every settable leaf field. path holds the key segments
// leading to the field (section segments excluded).
type fieldVisitor func(field reflect.Value, sf reflect.StructField, path []string) error

// targetStruct validates that target is a non-nil pointer to a struct and returns the struct.
func targetStruct(target any) (reflect.Value, error) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%w: got %T", ErrInvalidStructure, target)
	}
	return rv.Elem(), nil
}

// walkFields visits leaf fields depth first, descending into nested structs and
// non-nil struct pointers.
func walkFields(rv reflect.Value, path []string, nameOf func(reflect.StructField) string, visit fieldVisitor) error {
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Field(i)
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}

		name := nameOf(sf)
		if name == "-" {
			continue
		}
		fieldPath := append(append([]string{}, path...), name)

		switch {
		case field.Kind() == reflect.Struct && field.Type() != durationType:
			if err := walkFields(field, fieldPath, nameOf, visit); err != nil {
				return err
			}
		case field.Kind() == reflect.Ptr && !field.IsNil() && field.Elem().Kind() == reflect.Struct:
			if err := walkFields(field.Elem(), fieldPath, nameOf, visit); err != nil {
				return err
			}
		default:
			if err := visit(field, sf, fieldPath); err != nil {
				return fmt.Errorf("error in field '%s': %w", sf.Name, err)
			}
		}
	}
	return nil
}

// propertyName returns the key segment for a field: the yaml tag name, or the lower-cased
// field name when untagged.
func propertyName(sf reflect.StructField) string {
	if tag, ok := sf.Tag.Lookup("yaml"); ok {
		name, _, _ := strings.Cut(tag, ",")
		if name != "" {
			return name
		}
	}
	return strings.ToLower(sf.Name)
}

// envName returns the key segment for a field: the env tag, or the upper-cased field name.
func envName(sf reflect.StructField) string {
	if tag, ok := sf.Tag.Lookup("env"); ok && tag != "" {
		return strings.ToUpper(tag)
	}
	return strings.ToUpper(sf.Name)
}

// setFieldValue converts and sets a field value
func setFieldValue(field reflect.Value, strValue string) error {
	if !field.CanSet() {
		return ErrFieldCannotBeSet
	}

	if field.Type() == durationType {
		d, err := time.ParseDuration(strValue)
		if err != nil {
			return fmt.Errorf("%w: %v: %w", ErrFieldConversion, field.Type(), err)
		}
		field.SetInt(int64(d))
		return nil
	}

	if field.Kind() == reflect.Ptr {
		elem := reflect.New(field.Type().Elem())
		if err := setFieldValue(elem.Elem(), strValue); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if field.Kind() == reflect.Slice && field.Type().Elem().Kind() == reflect.String {
		parts := strings.Split(strValue, ",")
		values := reflect.MakeSlice(field.Type(), 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				values = reflect.Append(values, reflect.ValueOf(part).Convert(field.Type().Elem()))
			}
		}
		field.Set(values)
		return nil
	}

	convertedValue, err := cast.FromType(strValue, field.Type())
	if err != nil {
		return fmt.Errorf("%w: %v: %w", ErrFieldConversion, field.Type(), err)
	}

	field.Set(reflect.ValueOf(convertedValue).Convert(field.Type()))
	return nil
}

// lookupSection walks a decoded document along the dotted section key. A literal key
// containing dots takes precedence over nested traversal.
func lookupSection(doc map[string]any, key string) (any, bool) {
	if key == "" {
		return doc, true
	}
	if v, ok := doc[key]; ok {
		return v, true
	}

	head, rest, found := strings.Cut(key, ".")
	if !found {
		return nil, false
	}
	child, ok := doc[head]
	if !ok {
		return nil, false
	}
	childMap, ok := asStringMap(child)
	if !ok {
		return nil, false
	}
	return lookupSection(childMap, rest)
}

func asStringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	default:
		return nil, false
	}
}
