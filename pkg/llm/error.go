// Package llm provides the internal representations of the conversations askbox
// sends to a text-generation model and the completions it gets back.
package llm

// ErrorResponse is the JSON error envelope returned by the askbox HTTP API.
type ErrorResponse struct {
	Error string `json:"error"`
}
