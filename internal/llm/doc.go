// Package llm wraps the language-model provider behind a single
// completion call for the decision engine.
//
// The client speaks to any OpenAI-compatible endpoint (OpenAI,
// OpenRouter, local inference servers) via langchaingo. Completions
// are bounded by a per-call timeout from configuration so a stalled
// provider cannot hang the decision pipeline.
//
// # Usage
//
//	client, err := llm.New(llm.Config{
//	    Model:   "gpt-4o-mini",
//	    APIKey:  key,
//	    Timeout: 60,
//	})
//	response, err := client.Complete(ctx, prompt)
package llm
