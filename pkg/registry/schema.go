// pkg/registry/schema.go
package registry

// templateSchema validates template definition files before they enter the registry.
const templateSchema = `{
  "type": "object",
  "required": ["id", "name", "orientation", "clips"],
  "additionalProperties": true,
  "properties": {
    "id": {
      "type": "string",
      "minLength": 1,
      "pattern": "^[a-z0-9][a-z0-9-]*$"
    },
    "name": {
      "type": "string",
      "minLength": 1
    },
    "description": {
      "type": "string"
    },
    "orientation": {
      "type": "string",
      "enum": ["landscape", "portrait", "square"]
    },
    "clips": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["source"],
        "properties": {
          "source": {
            "type": "string",
            "enum": ["image", "title", "presents", "end_title"]
          },
          "duration": {
            "type": "number",
            "minimum": 0
          },
          "effect": {
            "type": "string"
          },
          "transition": {
            "type": "string"
          }
        }
      }
    }
  }
}`
