package intent

// Command names produced by the default rule set. Handlers are registered
// against these in the router's registry.
const (
	// CmdPolicyQuestion is a question about procedures, regulations or safety.
	CmdPolicyQuestion = "policy_question"
	// CmdManagerQuestion is a management / administration scoped question.
	CmdManagerQuestion = "manager_question"
	// CmdContainersDaily asks for today's container count.
	CmdContainersDaily = "containers_count_daily"
	// CmdContainersBetween asks for the container count between two dates.
	CmdContainersBetween = "containers_count_between"
	// CmdVehiclesBetween asks for the vehicle count between two dates.
	CmdVehiclesBetween = "vehicles_count_between"
	// CmdContainersComparison compares container counts of two months.
	CmdContainersComparison = "containers_count_comparison"
	// CmdContainersMonthly asks for the container count of a single month.
	CmdContainersMonthly = "containers_count_monthly"
	// CmdAnalysis is an explicit request for model-backed analysis.
	CmdAnalysis = "llm_analysis"
	// CmdContainerStatus looks up a container identifier across terminals.
	CmdContainerStatus = "container_status_lookup"
	// CmdCouncilQuestion is the generic domain-keyword fallback. The router
	// sends it to the consensus engine instead of leaving it unstructured.
	CmdCouncilQuestion = "council_question"
)

// Parameter keys used by the default rule set.
const (
	ParamQuestion    = "question"
	ParamTargetDate  = "target_date"
	ParamStartDate   = "start_date"
	ParamEndDate     = "end_date"
	ParamMonth       = "month"
	ParamYear        = "year"
	ParamMonth1      = "month1"
	ParamYear1       = "year1"
	ParamMonth2      = "month2"
	ParamYear2       = "year2"
	ParamContainerID = "container_id"
)

// Command is the structured result of classifying one inbound message.
// It is immutable once produced and consumed exactly once by the router.
type Command struct {
	Name   string
	Params map[string]any
}

// MonthYear is a month/year pair extracted from text, e.g. "פברואר 25".
type MonthYear struct {
	Month int
	Year  int
}
