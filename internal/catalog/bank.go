package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed bank.json
var bankRaw []byte

// bankSchema validates the embedded question bank at load time. A bank
// that fails validation is a build defect, so loading fails fast.
var bankSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"lessons": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"lesson_id":  map[string]any{"type": "integer", "minimum": 1},
					"subject":    map[string]any{"type": "string"},
					"difficulty": map[string]any{"type": "integer", "minimum": 1, "maximum": 3},
					"questions": map[string]any{
						"type":     "array",
						"minItems": 1,
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id":   map[string]any{"type": "integer", "minimum": 1},
								"text": map[string]any{"type": "string", "minLength": 1},
								"options": map[string]any{
									"type":     "array",
									"minItems": 2,
									"items":    map[string]any{"type": "string"},
								},
								"correct_index": map[string]any{"type": "integer", "minimum": 0},
							},
							"required":             []any{"id", "text", "options", "correct_index"},
							"additionalProperties": false,
						},
					},
				},
				"required":             []any{"lesson_id", "subject", "difficulty", "questions"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []any{"lessons"},
	"additionalProperties": false,
}

type bankQuestion struct {
	ID           int      `json:"id"`
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
}

type bankLesson struct {
	LessonID   int            `json:"lesson_id"`
	Subject    string         `json:"subject"`
	Difficulty int            `json:"difficulty"`
	Questions  []bankQuestion `json:"questions"`
}

type bankFile struct {
	Lessons []bankLesson `json:"lessons"`
}

var (
	bankOnce   sync.Once
	bankLoaded *bankFile
	bankErr    error
)

// loadBank parses and validates the embedded bank exactly once.
func loadBank() (*bankFile, error) {
	bankOnce.Do(func() {
		bankLoaded, bankErr = parseBank(bankRaw)
	})
	return bankLoaded, bankErr
}

func parseBank(raw []byte) (*bankFile, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}

	compiled, err := compileBankSchema()
	if err != nil {
		return nil, err
	}
	if err := compiled.Validate(parsed); err != nil {
		return nil, fmt.Errorf("question bank schema validation: %w", err)
	}

	var bank bankFile
	if err := json.Unmarshal(raw, &bank); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	// correct_index range depends on the option count, which the schema
	// cannot express per item.
	for _, l := range bank.Lessons {
		for _, q := range l.Questions {
			if q.CorrectIndex >= len(q.Options) {
				return nil, fmt.Errorf("lesson %d question %d: correct_index %d out of range", l.LessonID, q.ID, q.CorrectIndex)
			}
		}
	}
	return &bank, nil
}

func compileBankSchema() (*jsonschema.Schema, error) {
	defBytes, err := json.Marshal(bankSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal bank schema: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse bank schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema://question-bank.json", defParsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema://question-bank.json")
	if err != nil {
		return nil, fmt.Errorf("compile bank schema: %w", err)
	}
	return compiled, nil
}
