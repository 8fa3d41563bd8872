package bramble

import "fmt"

// exclusive is a single-writer cell for the shared containers (entity arena,
// systems list, cache maps). bramble runs on one goroutine, so the cell never
// blocks: entering it while it is held panics.
type exclusive struct {
	owner string
}

func (e *exclusive) enter(op string) {
	if e.owner != "" {
		panic(fmt.Sprintf("bramble: %s while %s is in progress", op, e.owner))
	}
	e.owner = op
}

func (e *exclusive) exit() {
	e.owner = ""
}
