package wizard

// Stage is the wizard's position. Transitions on Wizard are the only way to change it.
type Stage int

const (
	ChoosingStation Stage = iota
	ChoosingPort
	ChoosingSlotAndConfirming
	Committed
)

func (s Stage) String() string {
	switch s {
	case ChoosingStation:
		return "choosing_station"
	case ChoosingPort:
		return "choosing_port"
	case ChoosingSlotAndConfirming:
		return "choosing_slot_and_confirming"
	case Committed:
		return "committed"
	default:
		return "unknown"
	}
}
