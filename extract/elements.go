package extract

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/docent/core"
)

// element is one entry of an unstructured-style element dump.
type element struct {
	Type      string          `json:"type"`
	ElementID string          `json:"element_id"`
	Text      string          `json:"text"`
	Metadata  elementMetadata `json:"metadata"`
}

type elementMetadata struct {
	PageNumber    int    `json:"page_number"`
	TextAsHTML    string `json:"text_as_html"`
	ImageBase64   string `json:"image_base64"`
	ImageMimeType string `json:"image_mime_type"`
	ImagePath     string `json:"image_path"`
}

// elementKind maps an element type onto the closed set of unit kinds.
// Unknown types are treated as prose, which is how the partitioner's own
// chunker treats them.
func elementKind(elementType string) core.Kind {
	switch elementType {
	case "Table", "TableChunk":
		return core.KindTable
	case "Image", "Figure", "Picture":
		return core.KindImage
	default:
		return core.KindText
	}
}

func isTitle(elementType string) bool {
	return elementType == "Title"
}

// parseElements decodes a JSON element dump.
func parseElements(data []byte) ([]element, error) {
	var elements []element
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedElements, err)
	}
	return elements, nil
}

// tablePayload prefers the HTML rendering of a table, which keeps its structure.
func tablePayload(el element) string {
	if html := strings.TrimSpace(el.Metadata.TextAsHTML); html != "" {
		return html
	}
	return strings.TrimSpace(el.Text)
}

// inlineImage decodes an embedded base64 image, if the element carries one.
func inlineImage(el element) ([]byte, string, error) {
	if el.Metadata.ImageBase64 == "" {
		return nil, "", nil
	}
	data, err := base64.StdEncoding.DecodeString(el.Metadata.ImageBase64)
	if err != nil {
		return nil, "", fmt.Errorf("%w: element %s: %w", ErrMalformedElements, el.ElementID, err)
	}
	mediaType := el.Metadata.ImageMimeType
	if mediaType == "" {
		mediaType = "image/jpeg"
	}
	return data, mediaType, nil
}
