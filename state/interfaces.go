// state/interfaces.go
package state

import "time"

// Scheduler is the slice of the timer manager a machine needs. Defined here
// so tests can substitute a hand-fired fake.
type Scheduler interface {
	After(delay time.Duration, callback func()) int64
	Cancel(id int64)
}
