// Package google implements the Gemini streaming adapter on top of the
// google.golang.org/genai SDK.
//
// Gemini is turn-based: the normalizer sends every turn but the last as
// history and the last turn, prefixed with any system instructions, as the
// prompt. Each streamed response contributes the text parts of its first
// candidate; thought parts are dropped.
package google
