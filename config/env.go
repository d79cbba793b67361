package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/turbot/tailpipe-s3-log-forwarder/constants"
)

// LookupEnvFunc has the signature of os.LookupEnv
type LookupEnvFunc func(string) (string, bool)

// EnvName returns the environment variable which overrides the given hcl attribute,
// e.g. batch_size -> FORWARDER_BATCH_SIZE. log_group_name keeps its unprefixed name
func EnvName(attribute string) string {
	name := strcase.ToScreamingSnake(attribute)
	if name == constants.EnvLogGroupName {
		return name
	}
	return constants.EnvPrefix + name
}

// ApplyEnv sets every field of cfg whose environment variable is set
func ApplyEnv(cfg *Config, lookup LookupEnvFunc) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		attribute := hclAttributeName(t.Field(i))
		if attribute == "" {
			continue
		}
		name := EnvName(attribute)
		raw, ok := lookup(name)
		if !ok || raw == "" {
			continue
		}
		if err := setField(v.Field(i), raw); err != nil {
			return fmt.Errorf("invalid value for %s, %w", name, err)
		}
	}
	return nil
}

func hclAttributeName(f reflect.StructField) string {
	tag := f.Tag.Get("hcl")
	if tag == "" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func setField(field reflect.Value, raw string) error {
	if field.Kind() == reflect.Pointer {
		target := reflect.New(field.Type().Elem())
		if err := setField(target.Elem(), raw); err != nil {
			return err
		}
		field.Set(target)
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(raw)
	case reflect.Int:
		i, err := strconv.Atoi(raw)
		if err != nil {
			return err
		}
		field.SetInt(int64(i))
	case reflect.Float64:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type %s", field.Type())
	}
	return nil
}
