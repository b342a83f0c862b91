package filter

import (
	"strings"

	"github.com/amishk599/easyapply/internal/model"
)

// KeywordFilter keeps jobs whose title or company contains any keyword.
// Matching is case-insensitive. An empty keyword list keeps every job.
type KeywordFilter struct {
	keywords []string
}

// NewKeywordFilter returns a filter over keywords. Blank keywords are dropped.
func NewKeywordFilter(keywords []string) *KeywordFilter {
	kept := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			kept = append(kept, kw)
		}
	}
	return &KeywordFilter{keywords: kept}
}

// Match returns true if the job's title or company contains any keyword.
func (f *KeywordFilter) Match(job model.JobSummary) bool {
	if len(f.keywords) == 0 {
		return true
	}

	titleLower := strings.ToLower(job.Title)
	companyLower := strings.ToLower(job.Company)
	for _, kw := range f.keywords {
		if strings.Contains(titleLower, kw) || strings.Contains(companyLower, kw) {
			return true
		}
	}
	return false
}
