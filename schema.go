package sphindex

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

const tagKey = "sphindex"

// schemaMeta holds parsed struct tag metadata, cached per TypedIndex.
type schemaMeta struct {
	typ reflect.Type // struct type for reconstruction

	// Field index in the struct for the identifier.
	idIdx int

	// Full-text fields and numeric attributes for class registration.
	fields     []string
	attributes []string

	// Mapping from struct field index to document field name.
	mapped []fieldMapping
}

type fieldMapping struct {
	structIdx int
	name      string
}

// parseSchema reflects on T and extracts sphindex struct tag metadata.
// Supported tags: `sphindex:"name,field"` (full-text), `sphindex:"name,attr"`
// (numeric attribute), `sphindex:"name,id"` (identifier, uint64), and
// `sphindex:"name"` (stored only, not indexed).
func parseSchema[T any]() (*schemaMeta, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("sphindex: type %s is not a struct", t)
	}

	meta := &schemaMeta{typ: t, idIdx: -1}

	for i := range t.NumField() {
		f := t.Field(i)
		tag := f.Tag.Get(tagKey)
		if tag == "" || tag == "-" {
			continue
		}
		if err := applyTag(meta, i, f, tag); err != nil {
			return nil, err
		}
	}

	if meta.idIdx == -1 {
		return nil, fmt.Errorf("sphindex: no field with `sphindex:\"...,id\"` tag in %s", t)
	}
	if len(meta.fields) == 0 {
		return nil, fmt.Errorf("sphindex: no full-text field tags in %s", t)
	}
	return meta, nil
}

// applyTag processes a single struct field's sphindex tag.
func applyTag(meta *schemaMeta, idx int, f reflect.StructField, tag string) error {
	name, modifier, _ := strings.Cut(tag, ",")

	switch modifier {
	case "id":
		if meta.idIdx != -1 {
			return fmt.Errorf("sphindex: duplicate id tag on field %s", f.Name)
		}
		if f.Type.Kind() != reflect.Uint64 {
			return fmt.Errorf("sphindex: id field %s must be uint64", f.Name)
		}
		meta.idIdx = idx
	case "field":
		meta.fields = append(meta.fields, name)
		meta.mapped = append(meta.mapped, fieldMapping{structIdx: idx, name: name})
	case "attr":
		meta.attributes = append(meta.attributes, name)
		meta.mapped = append(meta.mapped, fieldMapping{structIdx: idx, name: name})
	case "":
		// Stored only, not indexed.
		meta.mapped = append(meta.mapped, fieldMapping{structIdx: idx, name: name})
	default:
		return fmt.Errorf("sphindex: unknown modifier %q on field %s", modifier, f.Name)
	}
	return nil
}

// indexConfig builds the class declaration from parsed schema.
func (m *schemaMeta) indexConfig(class string, idBits int) IndexConfig {
	return IndexConfig{
		Class:      class,
		Fields:     m.fields,
		Attributes: m.attributes,
		IDBits:     idBits,
	}
}

// toFields converts a typed struct to the schemaless field map.
func (m *schemaMeta) toFields(item any) (uint64, map[string]string) {
	v := reflect.ValueOf(item)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	id := v.Field(m.idIdx).Uint()

	fields := make(map[string]string, len(m.mapped))
	for _, fm := range m.mapped {
		fields[fm.name] = stringify(v.Field(fm.structIdx))
	}
	return id, fields
}

// fromDocument converts a document back to a typed struct.
func (m *schemaMeta) fromDocument(doc Document) any {
	v := reflect.New(m.typ).Elem()

	v.Field(m.idIdx).SetUint(doc.Identifier)
	for _, fm := range m.mapped {
		if val, ok := doc.Fields[fm.name]; ok {
			setFromString(v.Field(fm.structIdx), val)
		}
	}
	return v.Interface()
}

func stringify(v reflect.Value) string {
	switch v.Kind() {
	case reflect.String:
		return v.String()
	default:
		return fmt.Sprint(v.Interface())
	}
}

func setFromString(v reflect.Value, s string) {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			v.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			v.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			v.SetFloat(f)
		}
	case reflect.Bool:
		if b, err := strconv.ParseBool(s); err == nil {
			v.SetBool(b)
		}
	}
}
