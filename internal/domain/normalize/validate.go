package normalize

import (
	"fmt"
	"strings"

	"github.com/forPelevin/ytdigest/internal/types"
)

// Validate rejects results that did not actually process the transcript.
// original is the transcript text that was sent to the model.
func Validate(original string, r types.NormalizedResult) error {
	ft := strings.TrimSpace(r.FormattedText)
	if ft == "" {
		return fmt.Errorf("%w: empty formatted_text", types.ErrValidation)
	}
	if ft == strings.TrimSpace(original) {
		return fmt.Errorf("%w: formatted_text is identical to the input", types.ErrValidation)
	}
	var missing []string
	if strings.TrimSpace(r.Summary) == "" {
		missing = append(missing, "summary")
	}
	if len(r.Tags) == 0 {
		missing = append(missing, "tags")
	}
	if len(r.KeyPoints) == 0 {
		missing = append(missing, "key_points")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", types.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
