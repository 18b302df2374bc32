// Package llm is an optional fallback for documents whose text layer
// defeats the pattern chains: it asks a language model for the insured
// name and policy identifier. It is opt-in per tool call and only runs
// for documents where pattern extraction found neither field.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
)

// nameFieldsSchema constrains the model output to the two fields the
// fallback may fill. Empty strings mean "not present in the text".
var nameFieldsSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"name": map[string]any{
			"type":        "string",
			"description": "Full name of the insured person or primary traveller, exactly as printed. Empty string if none is present.",
		},
		"identifier": map[string]any{
			"type":        "string",
			"description": "Certificate, assist or policy number. Empty string if none is present.",
		},
	},
	"required":             []string{"name", "identifier"},
	"additionalProperties": false,
}

// NameFields is the model's answer for one document.
type NameFields struct {
	Name       string `json:"name"`
	Identifier string `json:"identifier"`
}

const prompt = `The following text was extracted from one travel insurance document. Identify the insured person's name and the document's certificate/assist/policy number. Copy values exactly as printed; use empty strings for anything not present. Do not invent values.`

// maxTextLen bounds how much document text goes into one request. The
// fields of interest sit on the first page, so the head is enough.
const maxTextLen = 6000

// ResolveNameFields asks the model for the name and identifier of one
// document given its extracted text.
func ResolveNameFields(ctx context.Context, apiKey, text string) (NameFields, error) {
	var fields NameFields
	if strings.TrimSpace(text) == "" {
		return fields, errors.New("no text to resolve")
	}
	if len(text) > maxTextLen {
		text = text[:maxTextLen]
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	response, err := client.Responses.New(ctx, responses.ResponseNewParams{
		Model: shared.ChatModelGPT5Mini,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: responses.ResponseInputParam{
				responses.ResponseInputItemParamOfMessage(
					responses.ResponseInputMessageContentListParam{
						responses.ResponseInputContentParamOfInputText(prompt + "\n\n" + text),
					},
					"user",
				),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigParamOfJSONSchema("name_fields", nameFieldsSchema),
		},
	})
	if err != nil {
		return fields, err
	}
	if err := json.Unmarshal([]byte(response.OutputText()), &fields); err != nil {
		return fields, err
	}
	fields.Name = strings.TrimSpace(fields.Name)
	fields.Identifier = strings.TrimSpace(fields.Identifier)
	return fields, nil
}
