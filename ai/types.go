package ai

// Prompt is the structured input to a Generator. The instruction is fixed by
// the caller, the context carries retrieved fragments in ranked order, and
// the question is the user's query verbatim.
type Prompt struct {
	Instruction string
	Context     string
	Question    string
}
