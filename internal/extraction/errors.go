package extraction

import "errors"

// ErrExtractionFailed means the model's output could not be turned into a
// valid invoice record: malformed JSON, a schema violation, or a confidence
// outside [0.0, 1.0]. No partial record is surfaced past this error.
var ErrExtractionFailed = errors.New("model output is not a valid invoice record")
