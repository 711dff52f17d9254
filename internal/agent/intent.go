package agent

import "strings"

// Intent tags a sub-query with the knowledge agent that should answer it.
type Intent string

const (
	IntentCompanyInfo      Intent = "company_info"
	IntentCompanyPrice     Intent = "company_price"
	IntentSupportError     Intent = "company_support_error"
	IntentSupportTechnical Intent = "company_support_technical"
)

// AgentName maps an intent tag to its agent.
func (i Intent) AgentName() string {
	switch i {
	case IntentCompanyInfo:
		return CompanyInfoAgentName
	case IntentCompanyPrice:
		return CompanyPriceAgentName
	case IntentSupportError:
		return SupportErrorAgentName
	case IntentSupportTechnical:
		return SupportTechnicalAgentName
	}
	return ""
}

// SubQuery is one intent extracted from a compound customer question.
type SubQuery struct {
	Intent Intent
	Query  string
}

var intentKeywords = []struct {
	intent   Intent
	keywords []string
	// canned rewrites the sub-query to a canonical question; empty means the
	// original query is forwarded as-is.
	canned string
}{
	{
		intent:   IntentCompanyInfo,
		keywords: []string{"tên công ty", "địa chỉ", "lịch sử", "fiine là gì"},
		canned:   "Công ty tên là gì và làm gì?",
	},
	{
		intent:   IntentCompanyPrice,
		keywords: []string{"gói dịch vụ", "giá", "bao nhiêu", "phí", "chi phí"},
		canned:   "Fiine đang cung cấp các gói dịch vụ nào và mức giá là bao nhiêu?",
	},
	{
		intent:   IntentSupportError,
		keywords: []string{"lỗi", "sự cố", "không vào được", "bị treo"},
	},
	{
		intent:   IntentSupportTechnical,
		keywords: []string{"cách dùng", "tạo công việc", "hướng dẫn", "tính năng"},
	},
}

var compoundSeparators = []string{"và", "với", ",", "cùng"}

// SplitIntents classifies a customer question into per-topic sub-queries by
// keyword matching. Deterministic: results always come back in catalog order
// (info, price, error, technical). Returns nil when nothing matched.
func SplitIntents(query string) []SubQuery {
	lower := strings.ToLower(query)
	var subs []SubQuery
	for _, entry := range intentKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				sub := SubQuery{Intent: entry.intent, Query: query}
				if entry.canned != "" {
					sub.Query = entry.canned
				}
				subs = append(subs, sub)
				break
			}
		}
	}
	return subs
}

// CompoundQuery reports whether a question looks like it bundles several
// requests: two or more joining separators ("và", "với", ",", "cùng").
func CompoundQuery(query string) bool {
	lower := strings.ToLower(query)
	total := 0
	for _, sep := range compoundSeparators {
		total += strings.Count(lower, sep)
	}
	return total >= 2
}
