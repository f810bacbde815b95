package sysfs

// ProbablySparse guesses whether f has holes: it holds fewer blocks than its size would need.
// This is the test coreutils cp uses. Delayed allocation, compression and inline data can fool it
// in both directions, so treat the answer as a hint.
func ProbablySparse(f File) (bool, error) {
	st, err := Stat(f)
	if err != nil {
		return false, err
	}

	if st.BlockSize <= 0 {
		return false, nil
	}

	return st.Blocks < st.Size/st.BlockSize, nil
}
