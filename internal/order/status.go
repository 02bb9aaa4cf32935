package order

type Status string

const (
	StatusDrafting  Status = "drafting"
	StatusPlaced    Status = "placed"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

var transitions = map[Status][]Status{
	StatusDrafting: {StatusPlaced, StatusCancelled},
	StatusPlaced:   {StatusPaid, StatusCancelled},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
// Paid and cancelled are terminal.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func (d *Draft) transition(to Status) error {
	if !CanTransition(d.Status, to) {
		return precondition("order cannot move from %s to %s", d.Status, to)
	}
	d.Status = to
	return nil
}
