// Package generator produces unconstrained metadata drafts (title,
// description, keywords) for analyzed images. Drafts come from either the
// vision provider, which sends the image to an OpenAI-compatible multimodal
// API, or the heuristic provider, which derives metadata from the filename
// and measured image properties without any network call.
package generator
