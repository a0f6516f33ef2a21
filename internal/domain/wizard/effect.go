package wizard

// Effect is an instruction produced by a transition for the caller to carry out
type Effect interface {
	isEffect()
}

// PromptKind selects the question shown to the user
type PromptKind string

const (
	PromptChooseCategory  PromptKind = "choose_category"
	PromptInvalidCategory PromptKind = "invalid_category"
	PromptTitle           PromptKind = "title"
	PromptTitleAgain      PromptKind = "title_again"
	PromptWish            PromptKind = "wish"
	PromptWishAgain       PromptKind = "wish_again"
)

// Prompt asks the user for the next piece of input.
// Category prompts carry the offered categories for the keyboard.
type Prompt struct {
	Kind       PromptKind
	Categories []CategoryOption
}

// Commit asks the caller to persist the draft and report back with CommitResult
type Commit struct {
	Draft Draft
}

// NoticeKind tells the user how the wizard ended
type NoticeKind string

const (
	NoticeCompleted NoticeKind = "completed"
	NoticeCancelled NoticeKind = "cancelled"
	NoticeFailed    NoticeKind = "failed"
)

// Notice reports that the wizard reached a terminal step
type Notice struct {
	Kind NoticeKind
}

func (Prompt) isEffect() {}
func (Commit) isEffect() {}
func (Notice) isEffect() {}
