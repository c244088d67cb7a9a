package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// MaxParams is the Postgres bind parameter limit per statement.
const MaxParams = 65535

// ModelColumns lists the db-tagged columns of a struct in field order.
func ModelColumns(model any) ([]string, error) {
	cols, _, err := columnsAndValuesFromModel(model)
	return cols, err
}

// InsertModels renders one multi-row insert for models of the same type.
func InsertModels[T any](table string, models []T, suffix string) (string, []any, error) {
	if len(models) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	cols, vals, err := columnsAndValuesFromModel(models[0])
	if err != nil {
		return "", nil, err
	}
	if len(cols)*len(models) > MaxParams {
		return "", nil, fmt.Errorf("insert of %d rows exceeds %d bind parameters", len(models), MaxParams)
	}

	builder := InsertInto(table).Columns(cols...).Values(vals...).Suffix(suffix)
	for _, model := range models[1:] {
		_, vals, err := columnsAndValuesFromModel(model)
		if err != nil {
			return "", nil, err
		}
		builder.Values(vals...)
	}
	return builder.ToSQL()
}

// ChunkSize is how many models of width columns fit in one statement.
func ChunkSize(columns int) int {
	if columns <= 0 {
		return 0
	}
	return MaxParams / columns
}

func columnsAndValuesFromModel(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct")
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		tag := strings.TrimSpace(field.Tag.Get("db"))
		if tag == "" || tag == "-" {
			continue
		}
		col := strings.TrimSpace(strings.Split(tag, ",")[0])
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}
