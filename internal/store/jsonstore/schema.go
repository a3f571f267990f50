package jsonstore

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Makepad-fr/task-tracker/internal/model"
)

const schemaURL = "https://github.com/Makepad-fr/task-tracker/tasks.schema.json"

//go:embed tasks.schema.json
var schemaJSON []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// FieldError points at the offending location inside the document.
type FieldError struct {
	Path string
	Err  error
}

func (e *FieldError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *FieldError) Unwrap() error { return e.Err }

// decode parses and validates a non-blank document. It also reports how many
// tasks carried the legacy in-progress literal.
func decode(b []byte) (*model.Collection, int, error) {
	schema, err := compiledSchema()
	if err != nil {
		return nil, 0, fmt.Errorf("compile schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, 0, fmt.Errorf("parse json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, 0, schemaError(err)
	}

	var c model.Collection
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, 0, fmt.Errorf("json unmarshal: %w", err)
	}
	if c.Tasks == nil {
		c.Tasks = []model.Task{}
	}
	if err := checkInvariants(&c); err != nil {
		return nil, 0, err
	}
	return &c, countLegacy(doc), nil
}

func checkInvariants(c *model.Collection) error {
	seen := make(map[int]int, len(c.Tasks))
	for i, t := range c.Tasks {
		if j, dup := seen[t.ID]; dup {
			return &FieldError{
				Path: fmt.Sprintf("tasks[%d].id", i),
				Err:  fmt.Errorf("duplicate id %d (also at tasks[%d])", t.ID, j),
			}
		}
		seen[t.ID] = i
		if t.UpdatedAt.Before(t.CreatedAt) {
			return &FieldError{
				Path: fmt.Sprintf("tasks[%d].updated_at", i),
				Err:  errors.New("earlier than created_at"),
			}
		}
	}
	if highest := c.MaxID(); highest > 0 && c.NextID <= highest {
		return &FieldError{
			Path: "next_id",
			Err:  fmt.Errorf("must be greater than largest id %d, got %d", highest, c.NextID),
		}
	}
	return nil
}

func countLegacy(doc any) int {
	root, _ := doc.(map[string]any)
	tasks, _ := root["tasks"].([]any)
	n := 0
	for _, raw := range tasks {
		if t, ok := raw.(map[string]any); ok && t["status"] == "inprogress" {
			n++
		}
	}
	return n
}

// schemaError flattens a jsonschema validation tree into its first leaf.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &FieldError{
		Path: jsonPointerToPath(ve.InstanceLocation),
		Err:  errors.New(ve.Message),
	}
}

// jsonPointerToPath renders an instance location such as "/tasks/0/id" as
// "tasks[0].id". Keys in this schema never need ~ escaping.
func jsonPointerToPath(ptr string) string {
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "#"), "/") {
		switch {
		case part == "":
		case isIndex(part):
			b.WriteString("[" + part + "]")
		case b.Len() == 0:
			b.WriteString(part)
		default:
			b.WriteString("." + part)
		}
	}
	return b.String()
}

func isIndex(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
