package store

import (
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const tasksSchemaURL = "todo://schemas/tasks.json"

// Shape of the persisted task collection. Extra fields are tolerated so older or newer
// writers do not wipe the list.
const tasksSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "completed", "createdAt"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "title": {"type": "string"},
      "description": {"type": ["string", "null"]},
      "completed": {"type": "boolean"},
      "createdAt": {"type": "string", "format": "date-time"},
      "completedAt": {"type": ["string", "null"], "format": "date-time"}
    }
  }
}`

var (
	tasksSchemaOnce sync.Once
	tasksSchema     *jsonschema.Schema
)

// TasksSchema returns the compiled schema for the value stored under KeyTasks.
func TasksSchema() *jsonschema.Schema {
	tasksSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		if err := compiler.AddResource(tasksSchemaURL, strings.NewReader(tasksSchemaJSON)); err != nil {
			panic(err)
		}
		tasksSchema = compiler.MustCompile(tasksSchemaURL)
	})
	return tasksSchema
}
