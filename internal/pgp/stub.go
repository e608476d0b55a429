package pgp

// StubVerifier is the deterministic test Verifier spec.md §9 asks for:
// "a test implementation returns a deterministic verdict".
type StubVerifier struct {
	Err error
}

// VerifyDetached always returns the configured verdict, ignoring its
// arguments.
func (s StubVerifier) VerifyDetached(data, signature []byte) error {
	return s.Err
}
