package catalog

// Status describes how a catalog call ended.
type Status int

const (
	// StatusEmpty means the catalog answered but had nothing usable.
	StatusEmpty Status = iota
	// StatusFound means at least one item was returned.
	StatusFound
	// StatusFailed means every attempt failed; Err holds the last failure.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusFailed:
		return "failed"
	default:
		return "empty"
	}
}

// Result is the outcome of a catalog call. Callers that only care about data can
// use Items directly: it is empty for both StatusEmpty and StatusFailed.
type Result[T any] struct {
	Items  []T
	Status Status
	Source string
	Err    error
}

// Empty reports whether the result carries no items.
func (r Result[T]) Empty() bool {
	return len(r.Items) == 0
}

func found[T any](source string, items []T) Result[T] {
	if len(items) == 0 {
		return empty[T](source)
	}
	return Result[T]{Items: items, Status: StatusFound, Source: source}
}

func empty[T any](source string) Result[T] {
	return Result[T]{Status: StatusEmpty, Source: source}
}

func failed[T any](source string, err error) Result[T] {
	return Result[T]{Status: StatusFailed, Source: source, Err: err}
}
