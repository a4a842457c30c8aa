package kiln

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/xraph/kiln/errors"
)

// FieldType names the expected shape of a configuration field.
type FieldType string

const (
	FieldTypeString FieldType = "string"
	FieldTypeNumber FieldType = "number"
	FieldTypeBool   FieldType = "bool"
	FieldTypeList   FieldType = "list"
	FieldTypeMap    FieldType = "map"
)

// FieldSchema constrains a single configuration field.
type FieldSchema struct {
	Required bool
	Type     FieldType
	Enum     []string
	Pattern  string
}

// Schema maps configuration field names to their constraints.
type Schema map[string]FieldSchema

// Manifest describes a discoverable component type: an optional
// configuration schema used to validate on-disk definitions, and the
// provider table the discovery loader binds implementations from.
type Manifest struct {
	Type string

	// Schema validates discovered configurations; nil disables validation.
	Schema Schema

	// Providers maps export names to implementations (constructors,
	// factories, or pre-built values).
	Providers map[string]any
}

// Validate checks a configuration against the schema. The first violation
// is returned as a validation error.
func (m *Manifest) Validate(config map[string]any) error {
	if len(m.Schema) == 0 {
		return nil
	}

	fields := make([]string, 0, len(m.Schema))
	for field := range m.Schema {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		constraint := m.Schema[field]
		value, present := config[field]

		if !present {
			if constraint.Required {
				return errors.ErrValidationError(field, errors.New("required field is missing"))
			}
			continue
		}

		if err := checkFieldType(field, constraint.Type, value); err != nil {
			return err
		}

		if len(constraint.Enum) > 0 {
			rendered := fmt.Sprint(value)
			if !contains(constraint.Enum, rendered) {
				return errors.ErrValidationError(field,
					fmt.Errorf("value %q is not one of %v", rendered, constraint.Enum))
			}
		}

		if constraint.Pattern != "" {
			text, ok := value.(string)
			if !ok {
				return errors.ErrValidationError(field, errors.New("pattern constraint requires a string value"))
			}
			matched, err := regexp.MatchString(constraint.Pattern, text)
			if err != nil {
				return errors.ErrConfigError("invalid pattern for field '"+field+"'", err)
			}
			if !matched {
				return errors.ErrValidationError(field,
					fmt.Errorf("value %q does not match pattern %q", text, constraint.Pattern))
			}
		}
	}

	return nil
}

// provider resolves the implementation for a discovered definition. The
// precedence is: the provider the configuration names explicitly, then the
// "default" provider, then a provider matching the file base name, then a
// sole registered provider.
func (m *Manifest) provider(config map[string]any, base string) (any, error) {
	if name, ok := config["provider"].(string); ok && name != "" {
		if impl, ok := m.Providers[name]; ok {
			return impl, nil
		}
		return nil, errors.ErrConfigError(
			fmt.Sprintf("provider '%s' is not registered in manifest '%s'", name, m.Type), nil)
	}

	if impl, ok := m.Providers["default"]; ok {
		return impl, nil
	}
	if impl, ok := m.Providers[base]; ok {
		return impl, nil
	}
	if len(m.Providers) == 1 {
		for _, impl := range m.Providers {
			return impl, nil
		}
	}

	return nil, errors.ErrConfigError(
		fmt.Sprintf("no provider for component '%s' in manifest '%s'", base, m.Type), nil)
}

func checkFieldType(field string, fieldType FieldType, value any) error {
	if fieldType == "" {
		return nil
	}

	ok := false
	switch fieldType {
	case FieldTypeString:
		_, ok = value.(string)
	case FieldTypeNumber:
		switch value.(type) {
		case int, int64, float64, float32:
			ok = true
		}
	case FieldTypeBool:
		_, ok = value.(bool)
	case FieldTypeList:
		_, ok = value.([]any)
	case FieldTypeMap:
		_, ok = value.(map[string]any)
	default:
		return errors.ErrConfigError(fmt.Sprintf("unknown field type '%s' for field '%s'", fieldType, field), nil)
	}

	if !ok {
		return errors.ErrValidationError(field,
			fmt.Errorf("expected %s, got %T", fieldType, value))
	}
	return nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
