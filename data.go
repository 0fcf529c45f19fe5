package heimer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Data is a loosely typed configuration map, loaded from JSON, YAML or HCL.
type Data struct {
	value interface{}
}

func NewData() *Data {
	return &Data{}
}

func (data *Data) String() string {
	return Pretty(data.value)
}

func DataFromFile(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var value map[string]interface{}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &value)
	case ".hcl":
		value, err = hclToMap(raw, path)
	default:
		err = json.Unmarshal(raw, &value)
	}
	if err != nil {
		return nil, fmt.Errorf("Cannot load config %q: %v", path, err)
	}
	return &Data{value: value}, nil
}

// hclToMap evaluates the top-level attributes of an HCL file, without
// variables or functions, into plain JSON-shaped values.
func hclToMap(raw []byte, path string) (map[string]interface{}, error) {
	file, diags := hclsyntax.ParseConfig(raw, path, hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, diags
	}
	attrs, diags := file.Body.JustAttributes()
	if diags.HasErrors() {
		return nil, diags
	}
	vals := make(map[string]cty.Value, len(attrs))
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return nil, diags
		}
		vals[name] = v
	}
	obj := cty.ObjectVal(vals)
	j, err := ctyjson.Marshal(obj, obj.Type())
	if err != nil {
		return nil, err
	}
	var value map[string]interface{}
	err = json.Unmarshal(j, &value)
	return value, err
}

func (data *Data) Put(key string, value interface{}) {
	if data.value == nil {
		data.value = make(map[string]interface{}, 0)
	}
	m := data.AsMap()
	if m != nil {
		m[key] = value
	}
}

func (data *Data) AsMap() map[string]interface{} {
	if data != nil && data.value != nil {
		if m, ok := data.value.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

func (data *Data) Get(keys ...string) interface{} {
	return data.get(keys)
}

func (data *Data) get(keys []string) interface{} {
	m := data.AsMap()
	for i, key := range keys {
		if m == nil {
			return nil
		}
		v, ok := m[key]
		if !ok {
			return nil
		}
		if i == len(keys)-1 {
			return v
		}
		m = AsMap(v)
	}
	return nil
}

func (data *Data) Has(keys ...string) bool {
	return data.get(keys) != nil
}

func (data *Data) GetString(keys ...string) string {
	return AsString(data.get(keys))
}

func (data *Data) GetBool(keys ...string) bool {
	return AsBool(data.get(keys))
}

func (data *Data) GetInt(keys ...string) int {
	return AsInt(data.get(keys))
}

func (data *Data) GetStringDefault(key string, defaultValue string) string {
	if !data.Has(key) {
		return defaultValue
	}
	return data.GetString(key)
}

func (data *Data) GetBoolDefault(key string, defaultValue bool) bool {
	if !data.Has(key) {
		return defaultValue
	}
	return data.GetBool(key)
}

func (data *Data) GetIntDefault(key string, defaultValue int) int {
	if !data.Has(key) {
		return defaultValue
	}
	return data.GetInt(key)
}
