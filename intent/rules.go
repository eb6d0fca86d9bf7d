package intent

import (
	"regexp"
	"strings"
	"time"
)

// MatchFunc inspects text and, on success, returns the extracted command
// parameters. Returning ok=false means the rule does not apply; it must never
// panic. The injected clock supplies "today" and the default year.
type MatchFunc func(text string, now time.Time) (map[string]any, bool)

// Rule pairs a command name with its matcher. Rules live in a flat ordered
// list; position in the list is the rule's priority.
type Rule struct {
	Command string
	Match   MatchFunc
}

var (
	policyPattern = regexp.MustCompile(`(?i)נוהל|נהלים|תקנות|תקנה|רגולציה|בטיחות|חומרים מסוכנים|חומ"ס|הנחיות|הסמכה|דרישות תפקיד|procedure|regulation|policy|safety|hazardous`)

	managerPattern = regexp.MustCompile(`(?i)מנהל|הנהלה|ניהול|manager|management`)

	dailyContainersPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?s)כמה.*מכולות.*היום`),
		regexp.MustCompile(`(?is)\bcontainers\b.*\btoday\b`),
	}

	rangeKeywordPattern = regexp.MustCompile(`(?i)בין|מתאריך|\bbetween\b|\bfrom\b`)

	containerKeywordPattern = regexp.MustCompile(`(?i)מכולות|מכולה|\bcontainers?\b`)

	vehicleKeywordPattern = regexp.MustCompile(`(?i)רכבים|כלי רכב|\bvehicles?\b|\bcars\b`)

	comparisonPattern = regexp.MustCompile(`(?i)לעומת|בהשוואה|מול|השווה|\bcompared?\b|\bversus\b|\bvs\b`)

	analysisPattern = regexp.MustCompile(`(?i)ניתוח|נתח|תנתח|גמיני|\bgemini\b|\banalyz\w*\b|\banalysis\b|\bAI\b`)

	// Container identifiers: ISO owner code + serial (4 letters, 7 digits),
	// or a long bare numeric reference. 9+ digits keeps YYYYMMDD tokens out.
	containerIDPattern      = regexp.MustCompile(`[A-Za-z]{4}\d{7}`)
	numericReferencePattern = regexp.MustCompile(`\d{9,}`)

	domainKeywordPattern = regexp.MustCompile(`(?i)מכולות|מכולה|רכבים|נמל|מטען|אנייה|אניה|ספינה|פריקה|טעינה|\bcontainers?\b|\bvehicles?\b|\bport\b|\bcargo\b|\bship\b`)
)

// DefaultRules returns the production rule list. The relative order is the
// core contract: policy and manager questions outrank date queries, explicit
// date queries outrank month queries, identifiers outrank the generic
// keyword fallback, and the fallback is always last.
func DefaultRules() []Rule {
	return []Rule{
		{Command: CmdPolicyQuestion, Match: matchPolicyQuestion},
		{Command: CmdManagerQuestion, Match: matchManagerQuestion},
		{Command: CmdContainersDaily, Match: matchDailyContainers},
		{Command: CmdContainersBetween, Match: matchContainersBetween},
		{Command: CmdVehiclesBetween, Match: matchVehiclesBetween},
		{Command: CmdContainersComparison, Match: matchContainersComparison},
		{Command: CmdContainersMonthly, Match: matchContainersMonthly},
		{Command: CmdAnalysis, Match: matchAnalysis},
		{Command: CmdContainerStatus, Match: matchContainerStatus},
		{Command: CmdCouncilQuestion, Match: matchCouncilQuestion},
	}
}

func matchPolicyQuestion(text string, _ time.Time) (map[string]any, bool) {
	if !policyPattern.MatchString(text) {
		return nil, false
	}
	return map[string]any{ParamQuestion: text}, true
}

func matchManagerQuestion(text string, _ time.Time) (map[string]any, bool) {
	if !managerPattern.MatchString(text) {
		return nil, false
	}
	return map[string]any{ParamQuestion: text}, true
}

func matchDailyContainers(text string, now time.Time) (map[string]any, bool) {
	for _, p := range dailyContainersPatterns {
		if p.MatchString(text) {
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			return map[string]any{ParamTargetDate: today}, true
		}
	}
	return nil, false
}

// matchDateRange implements the shared shape of the two explicit-range rules:
// a subject keyword, a range keyword and two parseable dates. Fewer than two
// dates means the rule falls through instead of erroring.
func matchDateRange(text string, subject *regexp.Regexp) (map[string]any, bool) {
	if !subject.MatchString(text) || !rangeKeywordPattern.MatchString(text) {
		return nil, false
	}
	dates := findDates(text)
	if len(dates) < 2 {
		return nil, false
	}
	start, end := orderedRange(dates[0], dates[1])
	return map[string]any{ParamStartDate: start, ParamEndDate: end}, true
}

func matchContainersBetween(text string, _ time.Time) (map[string]any, bool) {
	return matchDateRange(text, containerKeywordPattern)
}

func matchVehiclesBetween(text string, _ time.Time) (map[string]any, bool) {
	return matchDateRange(text, vehicleKeywordPattern)
}

func matchContainersComparison(text string, now time.Time) (map[string]any, bool) {
	if !containerKeywordPattern.MatchString(text) || !comparisonPattern.MatchString(text) {
		return nil, false
	}
	pairs := extractMonthYears(text, now)
	if len(pairs) < 2 {
		return nil, false
	}
	return map[string]any{
		ParamMonth1: pairs[0].Month, ParamYear1: pairs[0].Year,
		ParamMonth2: pairs[1].Month, ParamYear2: pairs[1].Year,
	}, true
}

func matchContainersMonthly(text string, now time.Time) (map[string]any, bool) {
	if !containerKeywordPattern.MatchString(text) {
		return nil, false
	}
	pairs := extractMonthYears(text, now)
	if len(pairs) == 0 {
		return nil, false
	}
	return map[string]any{ParamMonth: pairs[0].Month, ParamYear: pairs[0].Year}, true
}

func matchAnalysis(text string, now time.Time) (map[string]any, bool) {
	if !analysisPattern.MatchString(text) {
		return nil, false
	}
	params := map[string]any{ParamQuestion: text}
	if dates := findDates(text); len(dates) >= 2 {
		start, end := orderedRange(dates[0], dates[1])
		params[ParamStartDate] = start
		params[ParamEndDate] = end
	}
	return params, true
}

func matchContainerStatus(text string, _ time.Time) (map[string]any, bool) {
	if id := containerIDPattern.FindString(text); id != "" {
		return map[string]any{ParamContainerID: strings.ToUpper(id)}, true
	}
	if id := numericReferencePattern.FindString(text); id != "" {
		return map[string]any{ParamContainerID: id}, true
	}
	return nil, false
}

func matchCouncilQuestion(text string, _ time.Time) (map[string]any, bool) {
	if !domainKeywordPattern.MatchString(text) {
		return nil, false
	}
	return map[string]any{ParamQuestion: text}, true
}
