package ai

import (
	"strings"

	"github.com/amishk599/easyapply/internal/model"
)

// SalaryAnswer is the free-text reply to any compensation question.
const SalaryAnswer = "Negotiable based on total compensation package and role scope."

// preferredTerms is scanned in order; the first term found in any option wins.
var preferredTerms = []string{"yes", "authorized", "no sponsorship", "remote", "full-time"}

// Heuristic answers a question without any external call.
func Heuristic(q model.Question) string {
	if len(q.Options) > 0 {
		for _, term := range preferredTerms {
			for _, opt := range q.Options {
				if strings.Contains(strings.ToLower(opt), term) {
					return opt
				}
			}
		}
		return q.Options[0]
	}

	prompt := strings.ToLower(q.Prompt)
	switch {
	case strings.Contains(prompt, "salary"):
		return SalaryAnswer
	case strings.Contains(prompt, "experience"):
		return "5"
	default:
		return "Yes"
	}
}
