package access

import (
	"fmt"
	"time"
)

type StatusKind int

const (
	StatusNotAuthenticated StatusKind = iota
	StatusAuthenticated
	StatusBlocked
)

func (k StatusKind) String() string {
	switch k {
	case StatusAuthenticated:
		return "authenticated"
	case StatusBlocked:
		return "blocked"
	default:
		return "not authenticated"
	}
}

// Status is the outcome of an evaluation. Remaining is the time left before
// a block lifts and is zero for every other kind. Status values are
// comparable with ==.
type Status struct {
	Kind      StatusKind
	Remaining time.Duration
}

func Authenticated() Status    { return Status{Kind: StatusAuthenticated} }
func NotAuthenticated() Status { return Status{Kind: StatusNotAuthenticated} }
func Blocked(remaining time.Duration) Status {
	return Status{Kind: StatusBlocked, Remaining: remaining}
}

func (s Status) IsAuthenticated() bool { return s.Kind == StatusAuthenticated }
func (s Status) IsBlocked() bool       { return s.Kind == StatusBlocked }

func (s Status) String() string {
	if s.Kind == StatusBlocked {
		return fmt.Sprintf("blocked (%s left)", s.Remaining)
	}
	return s.Kind.String()
}
