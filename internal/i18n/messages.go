package i18n

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Messages is a flat translation bundle: dotted key to text.
type Messages map[string]string

// Keys returns the bundle's keys in sorted order.
func (m Messages) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Extensions lists the bundle file extensions in lookup order.
var Extensions = []string{".json", ".yaml", ".yml", ".toml"}

// Parse decodes a bundle document and flattens nested tables into dotted
// keys. The format is chosen by file extension.
func Parse(ext string, data []byte) (Messages, error) {
	var doc map[string]interface{}
	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = json.Unmarshal(data, &doc)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported bundle format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s bundle: %w", ext, err)
	}
	return Flatten(doc), nil
}

// ParseFile is Parse keyed on name's extension.
func ParseFile(name string, data []byte) (Messages, error) {
	return Parse(path.Ext(name), data)
}

// Flatten turns a nested document into dotted keys. Array elements are
// keyed by index; scalars are rendered with their natural formatting.
func Flatten(doc map[string]interface{}) Messages {
	out := Messages{}
	flattenInto(out, "", doc)
	return out
}

func flattenInto(out Messages, prefix string, v interface{}) {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, child := range val {
			flattenInto(out, join(prefix, k), child)
		}
	case map[interface{}]interface{}:
		for k, child := range val {
			flattenInto(out, join(prefix, fmt.Sprint(k)), child)
		}
	case []interface{}:
		for i, child := range val {
			flattenInto(out, join(prefix, strconv.Itoa(i)), child)
		}
	case []map[string]interface{}:
		for i, child := range val {
			flattenInto(out, join(prefix, strconv.Itoa(i)), child)
		}
	case nil:
		out[prefix] = ""
	case string:
		out[prefix] = val
	default:
		out[prefix] = fmt.Sprint(val)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
