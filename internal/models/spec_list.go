package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Spec is a single label/value attribute of a product.
type Spec struct {
	Label string `bson:"label" json:"label"`
	Value string `bson:"value" json:"value"`
}

// SpecList carries the variable-shape specification pairs. Legacy documents
// stored specs either as an array of {label, value} objects or as a flat
// object map, so both forms decode without failing the entire request.
type SpecList []Spec

func (s *SpecList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*s = nil
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var pairs []Spec
		if err := json.Unmarshal(data, &pairs); err != nil {
			return err
		}
		*s = pairs
		return nil
	}

	var asMap map[string]string
	if err := json.Unmarshal(data, &asMap); err != nil {
		return fmt.Errorf("specs must be a list of label/value pairs or an object: %w", err)
	}

	keys := make([]string, 0, len(asMap))
	for key := range asMap {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]Spec, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, Spec{Label: key, Value: asMap[key]})
	}
	*s = pairs
	return nil
}

func (s *SpecList) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	switch t {
	case bsontype.Null:
		*s = nil
		return nil
	case bsontype.Array:
		var pairs []Spec
		if err := bson.UnmarshalValue(t, data, &pairs); err != nil {
			return err
		}
		*s = pairs
		return nil
	case bsontype.EmbeddedDocument:
		var asMap map[string]string
		if err := bson.UnmarshalValue(t, data, &asMap); err != nil {
			return err
		}
		keys := make([]string, 0, len(asMap))
		for key := range asMap {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		pairs := make([]Spec, 0, len(keys))
		for _, key := range keys {
			pairs = append(pairs, Spec{Label: key, Value: asMap[key]})
		}
		*s = pairs
		return nil
	default:
		return fmt.Errorf("cannot decode %s into SpecList", t)
	}
}

// MarshalBSONValue always stores specs as an array of pairs, keeping new
// writes consistent even when legacy documents used the object form.
func (s SpecList) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue([]Spec(s))
}
