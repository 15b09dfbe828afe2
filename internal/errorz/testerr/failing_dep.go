package testerr

import "errors"

// Err is the error returned by failing dependencies.
var Err = errors.New("test error")

// FailingDep tracks calls to a dependency and fails them as configured.
// The zero value never fails.
type FailingDep struct {
	CallIndex         int
	Err               error
	FailAllAfterIndex bool
	FailAtIndex       int
}

// NewFailingDeps creates failure cases for a dependency that is expected
// to be called expectCalls times.
//
// For every call index there are two cases:
// - Only the call at the index fails.
// - The call at the index and all calls after it fail.
func NewFailingDeps(err error, expectCalls int) []FailingDep {
	deps := make([]FailingDep, 0, expectCalls*2)
	for i := 0; i < expectCalls; i++ {
		deps = append(deps, FailingDep{
			CallIndex:         -1,
			Err:               err,
			FailAllAfterIndex: true,
			FailAtIndex:       i,
		}, FailingDep{
			CallIndex:         -1,
			Err:               err,
			FailAllAfterIndex: false,
			FailAtIndex:       i,
		})
	}

	return deps
}

func (dep *FailingDep) shouldFail() bool {
	dep.CallIndex++

	if dep.Err == nil {
		return false
	}

	if dep.FailAtIndex == dep.CallIndex {
		return true
	}

	return dep.FailAllAfterIndex && dep.CallIndex > dep.FailAtIndex
}

// MaybeFailErrFunc returns dep.Err instead of calling f if this call should fail.
func MaybeFailErrFunc(dep *FailingDep, f func() error) error {
	if dep.shouldFail() {
		return dep.Err
	}

	return f()
}

// MaybeFail returns dep.Err instead of calling f if this call should fail.
func MaybeFail[T any](dep *FailingDep, f func() (T, error)) (T, error) {
	if dep.shouldFail() {
		var zero T
		return zero, dep.Err
	}

	return f()
}
