package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Синтаксис шаблонов
	SynInfo               Code = 2000
	SynUnclosedTag        Code = 2001
	SynUnclosedComment    Code = 2002
	SynUnexpectedEndblock Code = 2003
	SynEndblockMismatch   Code = 2004
	SynDuplicateBlock     Code = 2005
	SynUnclosedBlock      Code = 2006
	SynBadBlockName       Code = 2007
	SynUnclosedVerbatim   Code = 2008

	// source drifted from the parsed block table
	SynMarkerNotFound Code = 2101
	SynLineOutOfRange Code = 2102

	IOInfo  Code = 4000
	IORead  Code = 4001
	IOWrite Code = 4002
	IOLock  Code = 4003
	IOMkdir Code = 4004

	LoadInfo             Code = 5000
	LoadTemplateNotFound Code = 5001
	LoadPathNotFound     Code = 5002
	LoadEngine           Code = 5003
	LoadInvalidName      Code = 5004

	ResInfo     Code = 6000
	ResCycle    Code = 6001
	ResNoOrigin Code = 6002

	AnnInfo        Code = 7000
	AnnUnparseable Code = 7001
	AnnBadVersion  Code = 7002
	AnnDetached    Code = 7003
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		SynInfo:               "Template syntax information",
		SynUnclosedTag:        "Unclosed tag",
		SynUnclosedComment:    "Unclosed comment",
		SynUnexpectedEndblock: "endblock without matching block",
		SynEndblockMismatch:   "endblock name does not match block",
		SynDuplicateBlock:     "Block defined more than once",
		SynUnclosedBlock:      "Block is never closed",
		SynBadBlockName:       "Invalid block name",
		SynUnclosedVerbatim:   "Unclosed verbatim section",
		SynMarkerNotFound:     "Block marker not found at expected line",
		SynLineOutOfRange:     "Block line range outside of template",
		IOInfo:                "I/O information",
		IORead:                "Failed to read file",
		IOWrite:               "Failed to write file",
		IOLock:                "Failed to lock file",
		IOMkdir:               "Failed to create directory",
		LoadInfo:              "Loader information",
		LoadTemplateNotFound:  "Template not found",
		LoadPathNotFound:      "Template path not found",
		LoadEngine:            "Template failed to load",
		LoadInvalidName:       "Invalid template name",
		ResInfo:               "Resolver information",
		ResCycle:              "Inheritance recursion detected",
		ResNoOrigin:           "Block has no origin",
		AnnInfo:               "Annotation information",
		AnnUnparseable:        "Unparseable annotation",
		AnnBadVersion:         "Invalid annotation version",
		AnnDetached:           "Annotation not attached to a block",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("LDR%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("ANN%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
