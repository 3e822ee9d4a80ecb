package models

// Chunk is a contiguous piece of normalized SQL. Text is exactly
// source[Start:End] of the text it was cut from.
type Chunk struct {
	Index int    `json:"index"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Explanation is the outcome of a successful explanation run.
type Explanation struct {
	// Text is Parts joined by newlines.
	Text string `json:"explanation"`
	// Parts holds the successful per-chunk explanations in chunk order.
	Parts []string `json:"parts"`
	// Chunks is the number of chunks the input was split into.
	Chunks int `json:"chunks"`
	// Skipped lists the indexes of chunks that failed.
	Skipped []int `json:"skipped,omitempty"`
}

// Partial reports whether some chunks failed.
func (e *Explanation) Partial() bool {
	return len(e.Skipped) > 0
}
