package migration

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/rflorenc/tackle-migrator/internal/models"
)

// rawRecord is an undecoded origin or destination record.
type rawRecord map[string]interface{}

func decodeRaw(items []json.RawMessage) ([]rawRecord, error) {
	out := make([]rawRecord, 0, len(items))
	for _, item := range items {
		var r rawRecord
		if err := json.Unmarshal(item, &r); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// intField safely extracts an int field from a map.
func intField(obj map[string]interface{}, field string) int {
	return toInt(obj[field])
}

// stringField safely extracts a string field, returning "" if nil.
func stringField(obj map[string]interface{}, field string) string {
	if v, ok := obj[field].(string); ok {
		return v
	}
	return ""
}

// boolField safely extracts a bool field, returning false if nil.
func boolField(obj map[string]interface{}, field string) bool {
	if v, ok := obj[field].(bool); ok {
		return v
	}
	return false
}

func objectField(obj map[string]interface{}, field string) map[string]interface{} {
	if v, ok := obj[field].(map[string]interface{}); ok {
		return v
	}
	return nil
}

func listField(obj map[string]interface{}, field string) []interface{} {
	if v, ok := obj[field].([]interface{}); ok {
		return v
	}
	return nil
}

func stringList(obj map[string]interface{}, field string) []string {
	var out []string
	for _, v := range listField(obj, field) {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// idOf returns the id of a nested reference, which the origin sends either
// as an object with an "id" key or as a bare (possibly string) id.
func idOf(v interface{}) int {
	if m, ok := v.(map[string]interface{}); ok {
		return toInt(m["id"])
	}
	return toInt(v)
}

// refField reads a nested {id, name} object. nameKeys are tried in order.
// A missing or zero-id reference yields nil.
func refField(obj map[string]interface{}, field string, nameKeys ...string) *models.Ref {
	m := objectField(obj, field)
	if m == nil {
		return nil
	}
	ref := toRef(m, nameKeys...)
	if ref.ID == 0 {
		return nil
	}
	return &ref
}

func refList(obj map[string]interface{}, field string, nameKeys ...string) []models.Ref {
	var out []models.Ref
	for _, v := range listField(obj, field) {
		if m, ok := v.(map[string]interface{}); ok {
			if ref := toRef(m, nameKeys...); ref.ID != 0 {
				out = append(out, ref)
			}
		}
	}
	return out
}

func toRef(m map[string]interface{}, nameKeys ...string) models.Ref {
	if len(nameKeys) == 0 {
		nameKeys = []string{"name"}
	}
	ref := models.Ref{ID: toInt(m["id"])}
	for _, k := range nameKeys {
		if n := stringField(m, k); n != "" {
			ref.Name = n
			break
		}
	}
	return ref
}

func provenance(obj map[string]interface{}) models.Provenance {
	return models.Provenance{
		CreateUser: stringField(obj, "createUser"),
		UpdateUser: stringField(obj, "updateUser"),
	}
}

// toInt converts various numeric types, and numeric strings, to int.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		i, _ := n.Int64()
		return int(i)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	}
	return 0
}
