package usersapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const createUserSchema = `{
  "type": "object",
  "required": ["username", "email", "password"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "username": {"type": "string", "minLength": 1, "maxLength": 64, "pattern": "\\S"},
    "email": {"type": "string", "format": "email"},
    "full_name": {"type": "string", "maxLength": 256},
    "password": {"type": "string", "minLength": 8, "maxLength": 72}
  }
}`

const updateUserSchema = `{
  "type": "object",
  "properties": {
    "username": {"type": "string", "minLength": 1, "maxLength": 64, "pattern": "\\S"},
    "email": {"type": "string", "format": "email"},
    "full_name": {"type": "string", "maxLength": 256},
    "password": {"type": "string", "minLength": 8, "maxLength": 72}
  }
}`

const createStoreSchema = `{
  "type": "object",
  "required": ["name", "user_id"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1, "maxLength": 128, "pattern": "\\S"},
    "user_id": {"type": "string", "minLength": 1, "pattern": "\\S"}
  }
}`

const updateStoreSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": "string", "minLength": 1, "maxLength": 128, "pattern": "\\S"},
    "user_id": {"type": "string", "minLength": 1, "pattern": "\\S"}
  }
}`

// bodyValidator checks request bodies against a compiled JSON schema.
type bodyValidator struct {
	schema *jsonschema.Schema
}

func compileValidator(name, source string) (*bodyValidator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}
	return &bodyValidator{schema: schema}, nil
}

// validate decodes body as generic JSON and checks it against the schema. The
// returned error lists each failing field on its own clause.
func (v *bodyValidator) validate(body []byte) error {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err
	}
	messages := map[string]struct{}{}
	collectSchemaErrors(validationErr, messages)
	out := make([]string, 0, len(messages))
	for message := range messages {
		out = append(out, message)
	}
	sort.Strings(out)
	return errors.New(strings.Join(out, "; "))
}

func collectSchemaErrors(err *jsonschema.ValidationError, out map[string]struct{}) {
	if len(err.Causes) == 0 {
		field := strings.ReplaceAll(strings.TrimPrefix(err.InstanceLocation, "/"), "/", ".")
		if field == "" {
			out[err.Message] = struct{}{}
			return
		}
		out[field+": "+err.Message] = struct{}{}
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(cause, out)
	}
}
