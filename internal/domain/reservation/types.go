package reservation

import "fmt"

// Status is closed: the zero value is invalid and only the four constants exist.
type Status uint8

const (
	StatusPending Status = iota + 1
	StatusConfirmed
	StatusCancelled
	StatusUsed
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pendente"
	case StatusConfirmed:
		return "confirmada"
	case StatusCancelled:
		return "cancelada"
	case StatusUsed:
		return "utilizada"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusUsed:
		return true
	default:
		return false
	}
}

// IsActive reports whether the reservation occupies its slot and counts toward quotas.
func (s Status) IsActive() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusUsed:
		return true
	default:
		return false
	}
}

func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusUsed
}

func ParseStatus(v string) (Status, error) {
	switch v {
	case "pendente":
		return StatusPending, nil
	case "confirmada":
		return StatusConfirmed, nil
	case "cancelada":
		return StatusCancelled, nil
	case "utilizada":
		return StatusUsed, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, v)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, ErrInvalidStatus
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ActiveStatuses are the statuses counted by quotas and exclusivity.
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusUsed}
}

func ActiveStatusStrings() []string {
	active := ActiveStatuses()
	out := make([]string, len(active))
	for i, s := range active {
		out[i] = s.String()
	}
	return out
}

type Transition uint8

const (
	TransitionConfirm Transition = iota + 1
	TransitionCancel
	TransitionUse
)

func (t Transition) String() string {
	switch t {
	case TransitionConfirm:
		return "confirmar"
	case TransitionCancel:
		return "cancelar"
	case TransitionUse:
		return "utilizar"
	default:
		return fmt.Sprintf("Transition(%d)", uint8(t))
	}
}

// Next is the transition table. Every (status, transition) pair is handled.
func (s Status) Next(t Transition) (Status, error) {
	switch s {
	case StatusPending:
		switch t {
		case TransitionConfirm:
			return StatusConfirmed, nil
		case TransitionCancel:
			return StatusCancelled, nil
		case TransitionUse:
			return s, invalidTransition(s, t)
		}
	case StatusConfirmed:
		switch t {
		case TransitionCancel:
			return StatusCancelled, nil
		case TransitionUse:
			return StatusUsed, nil
		case TransitionConfirm:
			return s, invalidTransition(s, t)
		}
	case StatusCancelled, StatusUsed:
		return s, invalidTransition(s, t)
	}
	return s, invalidTransition(s, t)
}

func invalidTransition(s Status, t Transition) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, t, s)
}
