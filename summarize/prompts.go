package summarize

import (
	"fmt"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/core"
)

const (
	textPromptTemplate  = "Summarize the following text concisely, focusing on key information:\n\n%s\n\nSummary:"
	tablePromptTemplate = "Summarize the following table, highlighting key data points and relationships:\n\n%s\n\nSummary:"

	imageSystemPrompt = "You are an expert at analyzing images and describing their contents concisely."
	imageUserPrompt   = "Describe the contents of this image in detail, focusing on key visual elements, text, charts, or data presented."

	defaultImageMediaType = "image/jpeg"
)

// promptFor builds the summarization request for a unit.
func promptFor(unit *core.ContentUnit, config *ai.Config) (ai.Prompt, error) {
	prompt := ai.Prompt{
		MaxTokens:   config.MaxTokens,
		Temperature: config.Temperature,
	}

	switch unit.Kind {
	case core.KindText:
		prompt.Model = config.SummaryModel
		prompt.Text = fmt.Sprintf(textPromptTemplate, unit.Text())
	case core.KindTable:
		prompt.Model = config.SummaryModel
		prompt.Text = fmt.Sprintf(tablePromptTemplate, unit.Text())
	case core.KindImage:
		mediaType := unit.MediaType
		if mediaType == "" {
			mediaType = defaultImageMediaType
		}
		prompt.Model = config.VisionModel
		prompt.System = imageSystemPrompt
		prompt.Text = imageUserPrompt
		prompt.Images = []ai.Image{{MediaType: mediaType, Data: unit.Payload}}
	default:
		return ai.Prompt{}, core.ValidateKind(unit.Kind)
	}
	return prompt, nil
}
