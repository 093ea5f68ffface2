package openrouter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/hngprojects/docxtract/internal/core/domain"
)

// analysisSchema constrains what we accept as a well-formed model answer.
// Validation failure is not fatal: the lenient field-by-field reader still
// runs, the schema only gates the strict fast path.
const analysisSchema = `{
	"type": "object",
	"properties": {
		"documentType": {"type": "string"},
		"summary": {"type": "string"},
		"entities": {
			"type": "object",
			"properties": {
				"names":   {"type": "array", "items": {"type": "string"}},
				"dates":   {"type": "array", "items": {"type": "string"}},
				"amounts": {"type": "array", "items": {"type": "string"}},
				"emails":  {"type": "array", "items": {"type": "string"}},
				"phones":  {"type": "array", "items": {"type": "string"}}
			}
		}
	}
}`

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("analysis.json", strings.NewReader(analysisSchema)); err != nil {
		panic(fmt.Sprintf("add analysis schema: %v", err))
	}
	schema, err := compiler.Compile("analysis.json")
	if err != nil {
		panic(fmt.Sprintf("compile analysis schema: %v", err))
	}
	return schema
}

// parseContent turns the model's message content into an AnalysisResult.
// Strategies are tried in order and each one is total:
//  1. parse the content as the target JSON directly;
//  2. parse from the first '{' onward (models sometimes prepend prose);
//  3. give up and keep the raw content as the summary so no information is
//     discarded.
func parseContent(content string) domain.AnalysisResult {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.DefaultAnalysisResult()
	}

	if result, ok := tryParseJSON(content); ok {
		return result
	}

	if idx := strings.Index(content, "{"); idx > 0 {
		if result, ok := tryParseJSON(content[idx:]); ok {
			return result
		}
	}

	result := domain.DefaultAnalysisResult()
	result.Summary = content
	return result
}

// tryParseJSON decodes one JSON object into the analysis shape. When the
// payload validates against the schema it is unmarshalled directly;
// otherwise every field falls back to its safe default when absent or of
// the wrong type.
func tryParseJSON(s string) (domain.AnalysisResult, bool) {
	var raw map[string]json.RawMessage
	decoder := json.NewDecoder(bytes.NewReader([]byte(s)))
	if err := decoder.Decode(&raw); err != nil {
		return domain.AnalysisResult{}, false
	}

	if validateAgainstSchema(s) {
		var result domain.AnalysisResult
		if err := json.Unmarshal([]byte(s), &result); err == nil {
			return normalize(result), true
		}
	}

	result := domain.DefaultAnalysisResult()
	if dt := stringField(raw, "documentType"); dt != "" {
		result.DocumentType = dt
	}
	result.Summary = stringField(raw, "summary")

	if entRaw, ok := raw["entities"]; ok {
		var ent map[string]json.RawMessage
		if err := json.Unmarshal(entRaw, &ent); err == nil {
			result.Entities.Names = stringArrayField(ent, "names")
			result.Entities.Dates = stringArrayField(ent, "dates")
			result.Entities.Amounts = stringArrayField(ent, "amounts")
			result.Entities.Emails = stringArrayField(ent, "emails")
			result.Entities.Phones = stringArrayField(ent, "phones")
		}
	}
	return result, true
}

// validateAgainstSchema is advisory: a mismatch is logged by the caller via
// the lenient fallbacks already applied, never surfaced as an error.
func validateAgainstSchema(s string) bool {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return false
	}
	return compiledSchema.Validate(v) == nil
}

// normalize fills the gaps a schema-valid but sparse object may leave:
// nil entity slices become empty slices and a missing documentType keeps
// the default label.
func normalize(result domain.AnalysisResult) domain.AnalysisResult {
	if strings.TrimSpace(result.DocumentType) == "" {
		result.DocumentType = domain.DefaultAnalysisResult().DocumentType
	}
	result.Summary = strings.TrimSpace(result.Summary)
	if result.Entities.Names == nil {
		result.Entities.Names = []string{}
	}
	if result.Entities.Dates == nil {
		result.Entities.Dates = []string{}
	}
	if result.Entities.Amounts == nil {
		result.Entities.Amounts = []string{}
	}
	if result.Entities.Emails == nil {
		result.Entities.Emails = []string{}
	}
	if result.Entities.Phones == nil {
		result.Entities.Phones = []string{}
	}
	return result
}

func stringField(m map[string]json.RawMessage, key string) string {
	raw, ok := m[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func stringArrayField(m map[string]json.RawMessage, key string) []string {
	raw, ok := m[key]
	if !ok {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil || values == nil {
		return []string{}
	}
	return values
}
