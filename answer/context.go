package answer

import (
	"fmt"
	"strings"

	"github.com/poiesic/docent/ai"
	"github.com/poiesic/docent/core"
)

const defaultImageMediaType = "image/jpeg"

// assembled is the context built from a ranked query result.
type assembled struct {
	text    string
	images  []ai.Image
	cited   []core.ID
	dropped []core.ID
	// skipped holds units of a kind the context cannot carry.
	skipped []core.ID
}

// cost is the share of the context budget a unit consumes. Images are
// charged a flat cost since they are attached rather than inlined.
// The second result is false for kinds the context cannot carry.
func cost(unit *core.ContentUnit, imageCost int) (int, bool) {
	switch unit.Kind {
	case core.KindText, core.KindTable:
		return len(contextEntryPrefix) + len(unit.Payload), true
	case core.KindImage:
		return imageCost, true
	default:
		return 0, false
	}
}

// assemble keeps the longest prefix of result that fits in budget. Units are
// never truncated; everything after the first unit that does not fit is dropped.
func assemble(result *core.QueryResult, budget, imageCost int) assembled {
	var (
		out     assembled
		entries []string
		used    int
	)

	for _, unit := range result.Units {
		if len(out.dropped) > 0 {
			out.dropped = append(out.dropped, unit.ID)
			continue
		}
		c, ok := cost(unit, imageCost)
		if !ok {
			out.skipped = append(out.skipped, unit.ID)
			continue
		}
		// Entries are separated by a blank line.
		if len(out.cited) > 0 {
			c += 2
		}
		if used+c > budget {
			out.dropped = append(out.dropped, unit.ID)
			continue
		}
		used += c

		switch unit.Kind {
		case core.KindText, core.KindTable:
			entries = append(entries, contextEntryPrefix+unit.Text())
		case core.KindImage:
			mediaType := unit.MediaType
			if mediaType == "" {
				mediaType = defaultImageMediaType
			}
			out.images = append(out.images, ai.Image{MediaType: mediaType, Data: unit.Payload})
			entries = append(entries, fmt.Sprintf("%s[image %d attached]", contextEntryPrefix, len(out.images)))
		}
		out.cited = append(out.cited, unit.ID)
	}

	out.text = strings.Join(entries, "\n\n")
	return out
}
