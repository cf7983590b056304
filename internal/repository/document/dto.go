package document

import (
	"encoding/json"
	"fmt"
	"strconv"

	domdoc "github.com/meridian-oss/sphindex/internal/domain/document"
)

// Reserved top-level keys in the stored JSON shape. Everything else in the
// object is a schemaless document field.
const (
	keyIdentifier = "_id"
	keyClass      = "_class"
)

// marshalDoc flattens a document into its stored JSON shape.
func marshalDoc(doc *domdoc.Document) ([]byte, error) {
	obj := make(map[string]any, len(doc.Fields())+2)
	for k, v := range doc.Fields() {
		obj[k] = v
	}
	obj[keyIdentifier] = doc.Identifier()
	obj[keyClass] = doc.Class()

	data, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// unmarshalDoc hydrates a document from its stored JSON shape, applying an
// optional field projection.
func unmarshalDoc(data []byte, selectFields []string) (domdoc.Document, error) {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return domdoc.Document{}, fmt.Errorf("unmarshal document: %w", err)
	}

	id := numericValue(obj[keyIdentifier])
	class, _ := obj[keyClass].(string)

	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		if k == keyIdentifier || k == keyClass {
			continue
		}
		fields[k] = stringValue(v)
	}
	if len(selectFields) > 0 {
		fields = projectFields(fields, selectFields)
	}

	return domdoc.Reconstruct(id, class, fields), nil
}

func projectFields(fields map[string]string, selectFields []string) map[string]string {
	out := make(map[string]string, len(selectFields))
	for _, name := range selectFields {
		if v, ok := fields[name]; ok {
			out[name] = v
		}
	}
	return out
}

func numericValue(v any) uint64 {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0
		}
		return uint64(t)
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case json.Number:
		n, err := strconv.ParseUint(t.String(), 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(data)
	}
}
