package core

// Input is one discovered input file of a suite.
type Input struct {
	// Name is the base file name as listed in the input directory.
	Name string

	// Path is Name joined onto the input directory exactly as the caller
	// spelled it; this is the path handed to the external tool.
	Path string

	// Content is the raw file content. It only feeds SuiteHash.
	Content []byte
}

// InputSet is the ordered result of Discover.
type InputSet struct {
	// Dir is the directory the inputs were listed from.
	Dir string

	// Inputs follows directory listing order.
	Inputs []Input
}

// Names returns the input file names in order.
func (s *InputSet) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.Inputs))
	for i, in := range s.Inputs {
		out[i] = in.Name
	}
	return out
}
