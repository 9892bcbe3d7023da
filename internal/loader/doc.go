// Package loader is the template graph accessor: it maps namespaced
// template names to files, parses them with the configured delimiters and
// caches the result in memory and, optionally, on disk.
//
// Names look like "@Storefront/storefront/base.html.twig". Templates of
// the main namespace are addressed by their bare relative path.
package loader
