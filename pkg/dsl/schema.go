package dsl

// schemaJSON is the JSON Schema every workflow definition document is
// validated against before it is unmarshaled. Keeping it inline (rather than
// reading it off disk) means a definition can be validated the same way
// whether it arrives from storage, an HTTP request body, or a local file.
const schemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "handler": {
      "type": "string",
      "enum": ["thread", "process", "serial"]
    },
    "tasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["uri"],
        "properties": {
          "uri": {"type": "string", "minLength": 1},
          "kind": {
            "type": "string",
            "enum": ["any", "thread-safe", "process-safe"]
          },
          "slots": {"type": "integer", "minimum": 1},
          "inputs": {"type": "array", "items": {"type": "string"}},
          "outputs": {"type": "array", "items": {"type": "string"}},
          "mutables": {"type": "array", "items": {"type": "string"}},
          "command": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`
