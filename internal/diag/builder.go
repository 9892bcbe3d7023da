package diag

func New(sev Severity, code Code, template string, line int, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Template: template,
		Line:     line,
		Message:  msg,
	}
}

func NewError(code Code, template string, line int, msg string) Diagnostic {
	return New(SevError, code, template, line, msg)
}

func (d Diagnostic) WithNote(template string, line int, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Template: template, Line: line, Msg: msg})
	return d
}

func (d Diagnostic) WithPath(path string) Diagnostic {
	d.Path = path
	return d
}
