package memutils

// Validatable is implemented by anything that can check its own internal invariants, such as
// a packed list walking its records. DebugValidate accepts it.
type Validatable interface {
	Validate() error
}
