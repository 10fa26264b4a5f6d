package core

// Assignment is a scheduling decision: move Amount units of Item from
// SourceSlot into the container Target on behalf of MachineID. It is consumed
// within the cycle that produced it.
type Assignment struct {
	MachineID  string `json:"machine_id"`
	Target     string `json:"target"`
	Item       string `json:"item"`
	SourceSlot int    `json:"source_slot"`
	Amount     int    `json:"amount"`
}

// TransferOutcome is the truth reported by a successful transfer. Transferred
// may be lower than the requested amount.
type TransferOutcome struct {
	Transferred int `json:"transferred"`
	SourceSlot  int `json:"source_slot"`
}

// TransferResult pairs an executed assignment with its outcome.
type TransferResult struct {
	Assignment Assignment      `json:"assignment"`
	Outcome    TransferOutcome `json:"outcome"`
}

// FailedAssignment records an assignment whose execution failed.
type FailedAssignment struct {
	Assignment Assignment `json:"assignment"`
	Err        error      `json:"-"`
}

// Policy maps machine states and a read-only inventory snapshot to
// assignments. Implementations must not mutate inv.
type Policy interface {
	Name() string
	Schedule(machines []MachineState, inv Inventory) []Assignment
}
