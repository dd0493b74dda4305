package compute

// Slot names one of the two physical buffer pairs.
type Slot uint8

const (
	SlotA Slot = iota
	SlotB
)

func (s Slot) String() string {
	if s == SlotA {
		return "A"
	}
	return "B"
}

// Other returns the opposite slot.
func (s Slot) Other() Slot { return 1 - s }

// Roles is the read/write assignment for one integration step.
type Roles struct {
	Read  Slot
	Write Slot
}

// RoleFor returns the buffer roles of integration step step (1-indexed).
// Odd steps read B and write A, even steps read A and write B.
func RoleFor(step int) Roles {
	if step%2 == 0 {
		return Roles{Read: SlotA, Write: SlotB}
	}
	return Roles{Read: SlotB, Write: SlotA}
}

// CurrentSlot returns the slot holding the state after completed steps.
// Before the first step that is B, where the initial state is uploaded.
func CurrentSlot(completed int) Slot {
	if completed == 0 {
		return SlotB
	}
	return RoleFor(completed).Write
}
