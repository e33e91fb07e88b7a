package model

// SessionType is the closed set of access products. Session and PaymentRecord
// share it; no other value is valid.
type SessionType string

const (
	SessionType24Hour  SessionType = "24hour"
	SessionTypeOneTime SessionType = "onetime"
)

func (t SessionType) IsValid() bool {
	switch t {
	case SessionType24Hour, SessionTypeOneTime:
		return true
	default:
		return false
	}
}

// Label is the human readable form used in logs and CLI output.
func (t SessionType) Label() string {
	switch t {
	case SessionType24Hour:
		return "24-hour"
	case SessionTypeOneTime:
		return "one-time"
	default:
		return string(t)
	}
}
