package api

import (
	"github.com/AlecAivazis/survey/v2"
)

// askOne is swapped out in tests.
var askOne = survey.AskOne

// Confirm asks a yes/no question on the terminal. Any prompt error,
// including a non-interactive stdin, counts as "no".
func Confirm(question string) bool {
	q := &survey.Confirm{Message: question}
	confirmed := false
	if err := askOne(q, &confirmed); err != nil {
		return false
	}
	return confirmed
}
