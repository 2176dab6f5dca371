package handler

import (
	"encoding/json"

	"github.com/xeipuuv/gojsonschema"

	"aigateway/apierror"
)

const generateSchema = `{
	"type": "object",
	"required": ["prompt"],
	"properties": {
		"prompt": {"type": "string"}
	}
}`

const speechSchema = `{
	"type": "object",
	"required": ["text"],
	"properties": {
		"text": {"type": "string"}
	}
}`

var (
	generateValidator = mustSchema(generateSchema)
	speechValidator   = mustSchema(speechSchema)
)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(err)
	}
	return schema
}

// validateBody checks body against schema. Unparseable bodies and schema
// violations are both reported to the caller as missing.
func validateBody(schema *gojsonschema.Schema, body []byte, missing string) error {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		log.Debugf("request body is not JSON: %v", err)
		return apierror.ClientInput(missing)
	}
	if !result.Valid() {
		for _, desc := range result.Errors() {
			log.Debugf("request body rejected: %s", desc)
		}
		return apierror.ClientInput(missing)
	}
	return nil
}

// decodeJSON unmarshals a body that already passed validation.
func decodeJSON(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return apierror.Internal(err)
	}
	return nil
}
