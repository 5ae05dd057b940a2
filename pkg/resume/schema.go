package resume

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

const replySchema = `{
  "type": "object",
  "required": ["work_experiences", "skills"],
  "properties": {
    "work_experiences": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["job_title", "company_name"],
        "properties": {
          "job_title":    {"type": "string"},
          "company_name": {"type": "string"},
          "location":     {"type": ["string", "null"]},
          "start_date":   {"type": ["string", "null"]},
          "end_date":     {"type": ["string", "null"]},
          "description":  {"type": ["string", "null"]}
        }
      }
    },
    "skills": {
      "type": "array",
      "items": {"type": ["string", "null"]}
    }
  }
}`

var (
	compiledSchema = mustSchema(replySchema)
	validate       = validator.New()
)

func mustSchema(s string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("resume: bad reply schema: %v", err))
	}
	return schema
}

// checkShape validates the raw reply against the expected JSON shape.
func checkShape(body []byte) error {
	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	se := &SchemaError{}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		se.Violations = append(se.Violations, field+": "+desc.Description())
	}
	return se
}

// checkFields applies the field rules to the decoded, trimmed resume.
func checkFields(r Resume) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	se := &SchemaError{}
	for _, fe := range ves {
		se.Violations = append(se.Violations, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
	}
	return se
}
