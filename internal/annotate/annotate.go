// Package annotate enriches accepted relationship rationales with
// LLM-written explanations. Annotation is strictly post-hoc: it never
// changes confidences, kinds, or story membership, and any failure leaves
// the mechanical rationales in place.
package annotate

import (
	"errors"
)

// ErrAPIKeyRequired is returned when annotation is requested without an
// Anthropic API key in the environment.
var ErrAPIKeyRequired = errors.New("API key required")

// batchSize bounds how many relationships go into one model request.
const batchSize = 10
