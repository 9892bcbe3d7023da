// Package block resolves where an overridden block originally comes from,
// extracts its text and collects the annotation comments placed above it.
package block
