package app

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchema []byte

// LookupFunc resolves an environment variable. os.LookupEnv is used when nil.
type LookupFunc func(key string) (string, bool)

var varName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ApplyFile reads the YAML file at path, interpolates environment variables
// into its string values, validates it against the embedded schema and
// applies the keys it sets on top of c.
func (c *Config) ApplyFile(path string, lookup LookupFunc) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	return c.apply(raw, lookup)
}

func (c *Config) apply(raw []byte, lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}
	if doc.Kind == 0 {
		return nil // empty file
	}
	if err := interpolateNode(&doc, lookup); err != nil {
		return err
	}
	if err := validateNode(&doc); err != nil {
		return err
	}
	if err := doc.Decode(c); err != nil {
		return fmt.Errorf("decoding config file: %w", err)
	}
	return nil
}

// interpolateNode expands ${VAR}, ${VAR:-default} and ${VAR-default} in
// every string scalar. $$ is a literal $. An unquoted value that is all
// digits afterwards is retagged as an integer, true and false as booleans.
func interpolateNode(n *yaml.Node, lookup LookupFunc) error {
	if n.Kind == yaml.ScalarNode {
		if n.Tag != "!!str" && n.Tag != "" {
			return nil
		}
		v, err := Interpolate(n.Value, lookup)
		if err != nil {
			return fmt.Errorf("config file line %d: %w", n.Line, err)
		}
		n.Value = v
		if n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0 {
			return nil
		}
		switch {
		case isDigits(v):
			n.Tag = "!!int"
		case v == "true" || v == "false":
			n.Tag = "!!bool"
		}
		return nil
	}
	for i, child := range n.Content {
		// Mapping keys are never interpolated.
		if n.Kind == yaml.MappingNode && i%2 == 0 {
			continue
		}
		if err := interpolateNode(child, lookup); err != nil {
			return err
		}
	}
	return nil
}

// Interpolate expands environment references in s.
func Interpolate(s string, lookup LookupFunc) (string, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] != '$':
			b.WriteByte(s[i])
		case strings.HasPrefix(s[i:], "$$"):
			b.WriteByte('$')
			i++
		case strings.HasPrefix(s[i:], "${"):
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return "", fmt.Errorf("unterminated variable reference in %q", s)
			}
			v, err := expand(s[i+2:i+end], lookup)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
			i += end
		default:
			b.WriteByte('$')
		}
	}
	return b.String(), nil
}

func expand(expr string, lookup LookupFunc) (string, error) {
	name, def, hasDefault := strings.Cut(expr, "-")
	emptyIsUnset := false
	if hasDefault {
		name, emptyIsUnset = strings.CutSuffix(name, ":")
	}
	if !varName.MatchString(name) {
		return "", fmt.Errorf("invalid variable reference ${%s}", expr)
	}

	v, ok := lookup(name)
	if hasDefault && (!ok || (emptyIsUnset && v == "")) {
		return def, nil
	}
	return v, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateNode(doc *yaml.Node) error {
	var v any
	if err := doc.Decode(&v); err != nil {
		return fmt.Errorf("decoding config file: %w", err)
	}
	if v == nil {
		v = map[string]any{}
	}
	asJSON, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("config file is not a JSON compatible document: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(configSchema),
		gojsonschema.NewBytesLoader(asJSON),
	)
	if err != nil {
		return fmt.Errorf("validating config file: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("invalid config file: %s", strings.Join(msgs, "; "))
	}
	return nil
}
