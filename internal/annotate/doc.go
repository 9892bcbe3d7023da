// Package annotate writes `twig-block:<hash>@<version>` comments above
// overridden blocks, creating or updating them in place.
package annotate
