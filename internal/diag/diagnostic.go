package diag

type Note struct {
	Loc Loc    `msgpack:"loc"`
	Msg string `msgpack:"msg"`
}

type Diagnostic struct {
	Severity Severity `msgpack:"sev"`
	Code     Code     `msgpack:"code"`
	Message  string   `msgpack:"msg"`
	Primary  Loc      `msgpack:"primary"`
	Notes    []Note   `msgpack:"notes,omitempty"`
}

func New(sev Severity, code Code, primary Loc, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary Loc, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(loc Loc, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}
