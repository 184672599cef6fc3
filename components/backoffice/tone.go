package backoffice

// Tone is the display emphasis a status maps to. Templates turn it into colour.
type Tone string

const (
	ToneNeutral Tone = "neutral"
	ToneInfo    Tone = "info"
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
)

// Tones lists every tone in rendering order.
func Tones() []Tone {
	return []Tone{ToneNeutral, ToneInfo, ToneSuccess, ToneWarning, ToneDanger}
}

// CSSClass returns the badge class used by the embedded templates.
func (t Tone) CSSClass() string {
	switch t {
	case ToneInfo:
		return "badge-info"
	case ToneSuccess:
		return "badge-success"
	case ToneWarning:
		return "badge-warning"
	case ToneDanger:
		return "badge-danger"
	case ToneNeutral:
		return "badge-neutral"
	}
	return "badge-neutral"
}
