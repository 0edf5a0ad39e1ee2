// Package ruleset parses and validates category rule files for bulk import.
// A rule file is a versioned JSON document carrying URL and title rules;
// validation is a JSON Schema pass followed by semantic checks the schema
// cannot express.
package ruleset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed ruleset.schema.json
var rulesetSchemaJSON string

const (
	KindURL   = "url"
	KindTitle = "title"
)

type Rule struct {
	Kind            string `json:"kind"`
	Match           string `json:"match"`
	Category        string `json:"category"`
	TranslatedTitle string `json:"translated_title,omitempty"`
}

type Ruleset struct {
	Version string `json:"version"`
	Rules   []Rule `json:"rules"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// Parse validates raw against the embedded schema and returns the decoded
// ruleset. Duplicate matches within the file are rejected here so an import
// never races against itself.
func Parse(raw []byte) (*Ruleset, error) {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("decode ruleset JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize ruleset JSON: %w", err)
	}

	var rs Ruleset
	if err := json.Unmarshal(normalized, &rs); err != nil {
		return nil, fmt.Errorf("unmarshal ruleset: %w", err)
	}

	if err := validateSemantics(&rs); err != nil {
		return nil, err
	}

	return &rs, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("ruleset.schema.json", strings.NewReader(rulesetSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("ruleset.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("ruleset is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("ruleset contains trailing content")
	}

	return value, nil
}

func validateSemantics(rs *Ruleset) error {
	if rs == nil {
		return fmt.Errorf("ruleset is nil")
	}
	if strings.TrimSpace(rs.Version) != "v1" {
		return fmt.Errorf("version must be v1")
	}

	seen := make(map[string]int, len(rs.Rules))
	for i, rule := range rs.Rules {
		if strings.TrimSpace(rule.Match) == "" {
			return fmt.Errorf("rules[%d].match must not be empty", i)
		}
		if strings.TrimSpace(rule.Category) == "" {
			return fmt.Errorf("rules[%d].category must not be empty", i)
		}
		if rule.Kind == KindTitle && rule.TranslatedTitle != "" && strings.TrimSpace(rule.TranslatedTitle) == "" {
			return fmt.Errorf("rules[%d].translated_title must not be blank", i)
		}
		if rule.Kind == KindURL && rule.TranslatedTitle != "" {
			return fmt.Errorf("rules[%d]: translated_title only applies to title rules", i)
		}

		key := rule.Kind + "\x00" + strings.ToLower(strings.TrimSpace(rule.Match))
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("rules[%d] duplicates rules[%d] (%s %q)", i, prev, rule.Kind, rule.Match)
		}
		seen[key] = i
	}

	return nil
}
