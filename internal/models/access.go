package models

// AccessResult is the outcome of an author-only operation.
type AccessResult int

const (
	AccessOK AccessResult = iota
	AccessForbidden
	AccessNotFound
)

func (r AccessResult) String() string {
	switch r {
	case AccessOK:
		return "ok"
	case AccessForbidden:
		return "forbidden"
	case AccessNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
