package wizard

// Input is something that can drive a wizard transition.
// The set of inputs is closed; see the types below.
type Input interface {
	isInput()
}

// SelectCategory is a category button press. CategoryID is the raw token
// payload and is matched against the offered categories.
type SelectCategory struct {
	CategoryID string
}

// TextInput is a free-text message
type TextInput struct {
	Body string
}

// Cancel abandons the wizard
type Cancel struct{}

// CommitResult feeds the outcome of a Commit effect back into the machine
type CommitResult struct {
	Err error
}

func (SelectCategory) isInput() {}
func (TextInput) isInput()      {}
func (Cancel) isInput()         {}
func (CommitResult) isInput()   {}
