package transactions

import "strings"

// Status is the upper-cased transaction state. The set is open: values outside
// the known ones are kept as they are.
type Status string

const (
	Executed Status = "EXECUTED"
	Canceled Status = "CANCELED"
	Pending  Status = "PENDING"
)

// KnownStatuses lists the states offered for filtering, in display order.
var KnownStatuses = []Status{Executed, Canceled, Pending}

func ParseStatus(s string) Status {
	return Status(strings.ToUpper(strings.TrimSpace(s)))
}

func (s Status) Known() bool {
	for _, k := range KnownStatuses {
		if s == k {
			return true
		}
	}

	return false
}

func (s Status) String() string {
	return string(s)
}
