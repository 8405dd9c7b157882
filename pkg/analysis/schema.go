package analysis

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const sentimentSchema = `{
  "type": "object",
  "required": ["sentiment", "explanation"],
  "properties": {
    "sentiment": {
      "type": "object",
      "required": ["positive", "neutral", "negative"],
      "properties": {
        "positive": {"type": "number", "minimum": 0},
        "neutral":  {"type": "number", "minimum": 0},
        "negative": {"type": "number", "minimum": 0}
      }
    },
    "explanation": {"type": "string"}
  }
}`

const nerSchema = `{
  "type": "object",
  "required": ["entities"],
  "properties": {
    "entities": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["text", "category"],
        "properties": {
          "text":     {"type": "string"},
          "category": {"type": "string"},
          "start":    {"type": "integer"},
          "end":      {"type": "integer"}
        }
      }
    },
    "summary": {"type": "string"}
  }
}`

const classificationSchema = `{
  "type": "object",
  "required": ["categories"],
  "properties": {
    "categories": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "confidence"],
        "properties": {
          "name":        {"type": "string"},
          "confidence":  {"type": "number"},
          "explanation": {"type": "string"}
        }
      }
    },
    "dominant_category": {"type": "string"},
    "summary":           {"type": "string"}
  }
}`

var schemas = compileSchemas(map[Capability]string{
	Sentiment:      sentimentSchema,
	NER:            nerSchema,
	Classification: classificationSchema,
})

func compileSchemas(sources map[Capability]string) map[Capability]*jsonschema.Schema {
	c := jsonschema.NewCompiler()
	out := make(map[Capability]*jsonschema.Schema, len(sources))
	for capability, src := range sources {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
		if err != nil {
			panic(fmt.Sprintf("analysis: invalid %s schema: %v", capability.Slug(), err))
		}
		url := capability.Slug() + ".json"
		if err := c.AddResource(url, doc); err != nil {
			panic(fmt.Sprintf("analysis: adding %s schema: %v", capability.Slug(), err))
		}
		out[capability] = c.MustCompile(url)
	}
	return out
}

// validateSchema checks a JSON document against the schema for c.
func validateSchema(c Capability, doc string) error {
	sch, ok := schemas[c]
	if !ok {
		return &UnsupportedCapabilityError{Capability: c.String()}
	}
	v, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := sch.Validate(v); err != nil {
		return fmt.Errorf("response does not match %s schema: %w", c.Slug(), err)
	}
	return nil
}
