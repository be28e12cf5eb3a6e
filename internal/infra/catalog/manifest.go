package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/jsonschema-go/jsonschema"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"targetmcp/internal/domain"
)

type manifest struct {
	Function   string     `json:"function" yaml:"function" toml:"function" validate:"required"`
	Definition definition `json:"definition" yaml:"definition" toml:"definition"`
}

type definition struct {
	Type     string      `json:"type" yaml:"type" toml:"type" validate:"omitempty,eq=function"`
	Function functionDef `json:"function" yaml:"function" toml:"function"`
}

type functionDef struct {
	Name        string         `json:"name" yaml:"name" toml:"name" validate:"required"`
	Description *string        `json:"description" yaml:"description" toml:"description" validate:"required"`
	Parameters  map[string]any `json:"parameters" yaml:"parameters" toml:"parameters" validate:"required"`
}

var manifestValidator = validator.New(validator.WithRequiredStructEnabled())

func isManifest(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml", ".json", ".toml":
		return true
	default:
		return false
	}
}

func decodeManifest(name string, data []byte) (manifest, error) {
	var m manifest
	var err error
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		err = dec.Decode(&m)
	case ".toml":
		err = toml.Unmarshal(data, &m)
	default:
		return manifest{}, fmt.Errorf("unsupported manifest extension %q", path.Ext(name))
	}
	if err != nil {
		return manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return m, nil
}

func validateManifest(m manifest) error {
	if err := manifestValidator.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid manifest: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid manifest: %w", err)
	}
	return nil
}

// normalizeParameters checks that params is an object JSON Schema and returns
// it in JSON form, so numbers and lists look the same whichever decoder read them.
func normalizeParameters(params map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode parameters: %w", err)
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(raw, &schema); err != nil {
		return nil, fmt.Errorf("parameters are not a JSON schema: %w", err)
	}
	if schema.Type != "object" {
		return nil, fmt.Errorf("parameters type must be object, got %q", schema.Type)
	}
	if _, err := schema.Resolve(nil); err != nil {
		return nil, fmt.Errorf("resolve parameters schema: %w", err)
	}

	var normalized map[string]any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, fmt.Errorf("decode parameters: %w", err)
	}
	return normalized, nil
}

func (m manifest) schema(params map[string]any) domain.ToolSchema {
	return domain.ToolSchema{
		Name:        m.Definition.Function.Name,
		Description: *m.Definition.Function.Description,
		Parameters:  params,
	}
}
