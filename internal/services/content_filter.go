package services

import (
	"regexp"
	"strings"
)

// blockedTerms is the keyword screen applied to creator-supplied text.
var blockedTerms = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
}

var rejectionMessages = map[string]string{
	"inappropriate_language":   "Text contains inappropriate language.",
	"url_not_allowed":          "URLs and web links are not allowed.",
	"contact_info_not_allowed": "Contact information is not allowed.",
	"spam_detected":            "Text appears to be spam.",
	"excessive_caps":           "Please avoid excessive capital letters.",
}

// ContentFilter screens free text against blocked terms, links, contact
// details and spam patterns. It is safe for concurrent use once built.
type ContentFilter struct {
	blocked      []*regexp.Regexp
	urlPattern   *regexp.Regexp
	emailPattern *regexp.Regexp
	phonePattern *regexp.Regexp
	allCaps      *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		blocked:      make([]*regexp.Regexp, 0, len(blockedTerms)),
		urlPattern:   regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern: regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		phonePattern: regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
		// RE2 has no backreferences, so runs of 5+ identical characters are
		// detected in repeatedRun instead.
		allCaps: regexp.MustCompile(`[A-Z]{5,}`),
	}
	for _, term := range blockedTerms {
		f.blocked = append(f.blocked, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(term)+`\b`))
	}
	return f
}

// Screen returns ok=false and a reason code when text fails the filter.
func (f *ContentFilter) Screen(text string) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return true, ""
	}
	for _, re := range f.blocked {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if f.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if f.emailPattern.MatchString(text) || f.phonePattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if repeatedRun(text, 5) {
		return false, "spam_detected"
	}
	if len(f.allCaps.FindAllString(text, -1)) > 2 {
		return false, "excessive_caps"
	}
	return true, ""
}

func (f *ContentFilter) RejectionMessage(reason string) string {
	if msg, ok := rejectionMessages[reason]; ok {
		return msg
	}
	return "Text does not meet our content guidelines."
}

func repeatedRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range strings.ToLower(text) {
		if r == prev && r != ' ' {
			run++
			if run >= n {
				return true
			}
			continue
		}
		prev, run = r, 1
	}
	return false
}
