package cli

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"

	"github.com/dyike/WealthGo/internal/models"
)

// Decision choices offered under a pending advisory.
const (
	choiceSave = "Save this advisory"
	choiceEdit = "Request an edit"
	choiceSkip = "Decide later"
)

// PromptForPerson asks which HNWI to show articles for.
func PromptForPerson(people []models.HNWI) (string, error) {
	options := make([]string, 0, len(people))
	for _, p := range people {
		if strings.TrimSpace(p.Person) != "" {
			options = append(options, p.Person)
		}
	}
	if len(options) == 0 {
		return "", fmt.Errorf("no people available")
	}

	var selected string
	prompt := &survey.Select{
		Message:  "Select a person:",
		Options:  options,
		Default:  options[0],
		PageSize: 12,
	}
	if err := survey.AskOne(prompt, &selected); err != nil {
		return "", err
	}
	return selected, nil
}

// PromptForDecision asks what to do with an advisory for entity.
func PromptForDecision(entity string) (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: fmt.Sprintf("Advisory for %s is ready. What next?", entity),
		Options: []string{choiceSave, choiceEdit, choiceSkip},
		Default: choiceSkip,
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

// PromptForEditInstruction asks for the revision to request.
func PromptForEditInstruction() (string, error) {
	var instruction string
	prompt := &survey.Input{
		Message: "Describe the change you want:",
		Help:    "For example: focus on philanthropic associations, or drop articles older than 90 days",
	}
	err := survey.AskOne(prompt, &instruction, survey.WithValidator(func(val interface{}) error {
		if str, ok := val.(string); !ok || strings.TrimSpace(str) == "" {
			return fmt.Errorf("edit instruction cannot be empty")
		}
		return nil
	}))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(instruction), nil
}

// PromptForConfirmation asks a yes/no question, defaulting to no.
func PromptForConfirmation(message string) (bool, error) {
	var confirmed bool
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	err := survey.AskOne(prompt, &confirmed)
	return confirmed, err
}
