package project

// Authorizer gates Refresh behind a licensing or trial-mode decision
// external to this engine (spec.md §5.J supplemental feature, recovered
// from original_source/Project.cpp's trial-mode refusal). A nil
// Authorizer always authorizes, so the engine has no license dependency
// by default.
type Authorizer interface {
	IsAuthorized() bool
	NotifyWhenAuthorized(fn func())
}

// alwaysAuthorized is used whenever a Controller is built without an
// explicit Authorizer.
type alwaysAuthorized struct{}

func (alwaysAuthorized) IsAuthorized() bool { return true }
func (alwaysAuthorized) NotifyWhenAuthorized(fn func()) {
	if fn != nil {
		fn()
	}
}
