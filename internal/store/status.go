package store

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

var validNext = map[Status]map[Status]bool{
	StatusPending:  {StatusPaid: true, StatusFailed: true},
	StatusPaid:     {StatusRefunded: true},
	StatusFailed:   {},
	StatusRefunded: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
