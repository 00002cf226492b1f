// Package llm provides the language model generators used to produce the next
// week's routine prescription.
//
// Every provider implements Generator: a prompt goes in, the model's raw reply
// text comes out. Parsing and validation of that reply belong to the protocol
// package, not here.
//
// # Providers
//
//   - gemini: Google's Gemini API through the genai SDK (default).
//   - openrouter: OpenRouter's chat completion endpoint.
//   - mock: a canned reply for local runs without credentials.
//
// NewFromConfig selects the provider from llm.provider.
//
// # Retry Behaviour
//
// The OpenRouter client retries on HTTP 408/429/5xx errors, empty completions
// and network timeouts with exponential backoff (base 1s, max 10s, up to 3
// attempts by default). Context cancellation aborts retries immediately. The
// Gemini generator relies on the SDK's own transport behaviour and is not
// retried here; a failed generation is picked up by the next reconciliation.
package llm
