// Package annotation computes block content fingerprints and reads and
// writes the `twig-block:<hash>[@<version>]` payload carried in template
// comments.
package annotation
