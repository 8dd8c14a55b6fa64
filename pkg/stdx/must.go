package stdx

// Must0 panics if the provided error is not nil. It is intended for error
// handling in situations where an error is not expected and should cause the
// program to terminate if it occurs.
func Must0(err error) {
	if err != nil {
		panic(err)
	}
}

// Must1 returns v if err is nil and panics otherwise. It simplifies error
// handling where you are confident the error cannot occur.
func Must1[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}
