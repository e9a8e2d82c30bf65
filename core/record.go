package core

import (
	"encoding/json"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/stoewer/go-strcase"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// recordSchema describes the known wire fields of a JSON object. Fields are
// named as in the struct json tags (camelCase); their snake_case spellings
// are accepted on decode. Keys matching neither are reported as extras so
// open records can carry them through unchanged.
type recordSchema struct {
	fields  map[string]struct{}
	aliases map[string]string // alternate spelling -> canonical
}

// schemaOf builds a recordSchema from the json tags of the struct type T.
func schemaOf[T any]() recordSchema {
	var zero T
	rt := reflect.TypeOf(zero)
	fields := make([]string, 0, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = f.Name
		}
		fields = append(fields, name)
	}
	return newRecordSchema(fields...)
}

func newRecordSchema(fields ...string) recordSchema {
	s := recordSchema{
		fields:  make(map[string]struct{}, len(fields)),
		aliases: make(map[string]string, len(fields)),
	}
	for _, f := range fields {
		s.fields[f] = struct{}{}
		if snake := strcase.SnakeCase(f); snake != f {
			s.aliases[snake] = f
		}
	}
	return s
}

// withAlias registers an extra accepted spelling for a canonical field.
func (s recordSchema) withAlias(alias, canonical string) recordSchema {
	s.aliases[alias] = canonical
	return s
}

// split partitions a JSON object into known fields keyed by their canonical
// name and unknown ones. A canonical spelling beats an alias for the same
// field. A JSON null decodes to two empty maps.
func (s recordSchema) split(data []byte) (map[string]json.RawMessage, map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}
	known := make(map[string]json.RawMessage, len(raw))
	var extra map[string]json.RawMessage
	for k, v := range raw {
		if _, ok := s.fields[k]; ok {
			known[k] = v
			continue
		}
		if canonical, ok := s.aliases[k]; ok {
			if _, dup := raw[canonical]; !dup {
				known[canonical] = v
			}
			continue
		}
		if extra == nil {
			extra = make(map[string]json.RawMessage)
		}
		extra[k] = v
	}
	return known, extra, nil
}

// canonicalize rewrites the known keys of a JSON object to their canonical
// spelling and drops unknown keys.
func (s recordSchema) canonicalize(data []byte) ([]byte, error) {
	known, _, err := s.split(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(known)
}

// decode fills dst (a pointer to a struct whose json tags match the schema)
// from data and returns the unknown keys decoded as generic JSON values.
func (s recordSchema) decode(data []byte, dst any) (map[string]any, error) {
	known, extra, err := s.split(data)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return nil, nil
	}
	ext := make(map[string]any, len(extra))
	for k, v := range extra {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, err
		}
		ext[k] = val
	}
	return ext, nil
}

// encode marshals src and appends ext to the resulting object in key
// order. Known fields always win over an extension of the same name.
func (s recordSchema) encode(src any, ext map[string]any) ([]byte, error) {
	b, err := json.Marshal(src)
	if err != nil || len(ext) == 0 {
		return b, err
	}
	keys := make([]string, 0, len(ext))
	for k := range ext {
		if _, ok := s.fields[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if b, err = sjson.SetBytes(b, extensionPath(k), ext[k]); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// extensionPath turns an object key into an sjson path addressing exactly
// that key. Numeric keys are forced to object keys.
func extensionPath(key string) string {
	p := gjson.Escape(key)
	if _, err := strconv.Atoi(key); err == nil {
		p = ":" + p
	}
	return p
}
