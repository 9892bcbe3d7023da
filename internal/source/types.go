package source

// FileID identifies one loaded version of a template file in a FileSet.
type FileID uint32

// FileFlags record how the bytes on disk differed from the normalized
// content, so that a rewrite can restore them.
type FileFlags uint8

const (
	FileVirtual         FileFlags = 1 << iota // не с диска (тесты, фикстуры)
	FileHadBOM                                // UTF-8 BOM stripped
	FileNormalizedCRLF                        // "\r\n" folded to "\n"
	FileTrailingNewline                       // content ends with "\n"
)

// Has reports whether every bit of bit is set.
func (f FileFlags) Has(bit FileFlags) bool {
	return f&bit == bit
}

// File is one template file. Content is BOM-free with "\n" line endings;
// LineIdx holds the offset of every "\n".
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}
