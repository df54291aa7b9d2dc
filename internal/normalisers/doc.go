// Package normalisers provides implementations of the Normaliser interface
// for the text formats the engine ingests. Each normaliser knows how to
// extract text content from a specific MIME type.
//
// A Registry picks the normaliser for a file by MIME type, preferring the
// highest Priority. The filesystem loader builds one at startup:
//
//	reg := normalisers.NewRegistry(markdown.New(), plaintext.New())
//	doc, err := reg.Normalise(ctx, raw)
package normalisers
