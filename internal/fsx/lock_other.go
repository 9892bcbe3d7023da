//go:build !unix

package fsx

import "os"

// Advisory locks are only taken on unix; elsewhere the rename stays atomic.
func lock(*os.File) error   { return nil }
func unlock(*os.File) error { return nil }
