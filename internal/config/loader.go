package config

import (
	"bytes"
	"encoding/json" // json decodes the tooling and register configuration files
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml" // toml decodes the LDAP settings file
	"gopkg.in/yaml.v3"           // yaml decodes the domain and local configuration files
)

///////////////////////////////////////////////////////////////////////////////
// Formats and decoders
///////////////////////////////////////////////////////////////////////////////

// Format names an on-disk configuration encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Decoder turns raw file content into a configuration value. Decoders must
// reject keys the target type does not declare.
type Decoder interface {
	Decode(data []byte, v any) error
}

// DecoderFunc adapts a plain function to the Decoder interface.
type DecoderFunc func(data []byte, v any) error

func (f DecoderFunc) Decode(data []byte, v any) error {
	return f(data, v)
}

var decoders = map[Format]Decoder{
	FormatJSON: DecoderFunc(decodeJSON),
	FormatTOML: DecoderFunc(decodeTOML),
	FormatYAML: DecoderFunc(decodeYAML),
}

// DecoderFor returns the decoder registered for format.
func DecoderFor(format Format) (Decoder, error) {
	d, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("unsupported configuration format %q", format)
	}
	return d, nil
}

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&json.RawMessage{}); err != io.EOF {
		return fmt.Errorf("unexpected data after the top-level value")
	}
	return nil
}

func decodeTOML(data []byte, v any) error {
	md, err := toml.Decode(string(data), v)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func decodeYAML(data []byte, v any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(v)
}

// Encode writes v to w in format, using the same keys the decoder reads.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatTOML:
		return toml.NewEncoder(w).Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported configuration format %q", format)
	}
}

///////////////////////////////////////////////////////////////////////////////
// Loading
///////////////////////////////////////////////////////////////////////////////

// Validator is implemented by configuration types with required fields.
type Validator interface {
	Validate() error
}

// Load reads the file at path, decodes it with the decoder for format and
// validates the result. On any failure it returns nil and an error; a
// partially filled value is never returned.
func Load[T any](path string, format Format) (*T, error) {
	dec, err := DecoderFor(format)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := new(T)
	if err := dec.Decode(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s configuration in %q: %w", format, path, err)
	}

	if v, ok := any(cfg).(Validator); ok {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration in %q: %w", path, err)
		}
	}

	return cfg, nil
}

// requireFields returns an error listing every key whose value is empty.
func requireFields(fields map[string]string) error {
	var missing []string
	for key, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
}
