// Package twig is a minimal Twig front end: it tokenizes template source
// with configurable delimiters and builds an immutable, document-ordered
// view of what the block tooling needs (block declarations, comments and
// the extends parent).
//
// It does not evaluate expressions. Tags other than block, endblock,
// extends, sw_extends, embed and verbatim/raw are skipped.
package twig
