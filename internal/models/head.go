package models

// ActiveRef identifies the checked-out branch and its last commit.
// Parent is empty when the branch has no commits yet.
type ActiveRef struct {
	Branch string `json:"branch"`
	Parent string `json:"parent,omitempty"`
}

// HeadState is the persisted head record (art.json).
type HeadState struct {
	Active        ActiveRef         `json:"active"`
	Remote        string            `json:"remote"`
	Configuration map[string]string `json:"configuration"`
}

// NewHeadState returns a head pointing at an empty branch.
func NewHeadState(branch string) *HeadState {
	return &HeadState{
		Active:        ActiveRef{Branch: branch},
		Configuration: make(map[string]string),
	}
}
