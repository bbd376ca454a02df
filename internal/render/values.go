package render

import (
	"fmt"

	"github.com/formstamp/formstamp/internal/models"
)

// Instruction pairs a field definition with the text to draw in it.
type Instruction struct {
	Field models.Field
	Text  string
}

// ResolveValues matches data values to field definitions by name. Fields
// whose value is missing, nil, or stringifies to "" produce no
// instruction: empty slots are simply left blank on the page. All other
// values are coerced with their plain string representation; the field
// type informs form validation upstream, not render formatting.
func ResolveValues(fields []models.Field, dataValues map[string]any) []Instruction {
	instructions := make([]Instruction, 0, len(fields))
	for _, field := range fields {
		value, ok := dataValues[field.Name]
		if !ok || value == nil {
			continue
		}
		text := fmt.Sprintf("%v", value)
		if text == "" {
			continue
		}
		instructions = append(instructions, Instruction{Field: field, Text: text})
	}
	return instructions
}
