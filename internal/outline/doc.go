// Package outline inspects prompt documents with a real markdown parser.
//
// The extractor in mdconfig works line by line and deliberately forgives
// malformed input. This package uses goldmark to show what the document
// actually looks like ([Headings]) and to explain why it may parse
// differently than intended ([Check]).
package outline
