// Package gemini implements the llm.CompletionClient interface using
// Google's Gemini API. Prompts and optional inline image bytes are sent as
// a single multimodal request; transient failures are retried with
// exponential backoff and jitter, and token usage is logged with an
// informational cost estimate after each successful call.
package gemini
