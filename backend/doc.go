// Package backend abstracts the text-generation services the council engine
// fans out to. The engine only ever sees the Gateway interface: submit a
// prompt to a named backend, receive text or a failure, bounded by the
// caller's context. Provider specifics live in the backend/openai,
// backend/anthropic and backend/gemini subpackages; Registry multiplexes
// registered clients behind a single Gateway.
package backend
