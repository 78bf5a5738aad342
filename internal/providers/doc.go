// Package providers sends a resolved prompt to a chat model.
//
// Supported vendors: Anthropic (messages API) and anything speaking the
// OpenAI chat completions protocol, which covers OpenAI, Ollama and
// LM Studio through a single client.
//
// All providers share a retry helper with exponential back-off on rate
// limits and server errors. Authentication failures are never retried and
// can be detected with [IsAuthError]. Clients carry their endpoint and
// *http.Client as fields so tests can point them at httptest servers.
//
// Use [New] to obtain a [Chatter] from a prompt's model.type and model name,
// and [FromConfig] to build the request.
package providers
