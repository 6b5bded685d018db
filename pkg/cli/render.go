package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/secmon-lab/controltower/pkg/domain/model"
	"github.com/secmon-lab/controltower/pkg/domain/types"
	"github.com/secmon-lab/controltower/pkg/usecase"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	labelColor   = color.New(color.Bold)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen, color.Bold)
	failureColor = color.New(color.FgRed, color.Bold)

	toneColors = map[string]*color.Color{
		"green":  color.New(color.FgGreen),
		"blue":   color.New(color.FgBlue),
		"yellow": color.New(color.FgYellow),
		"gray":   color.New(color.FgHiBlack),
	}
)

func heading(w io.Writer, title string) {
	_, _ = headingColor.Fprintln(w, title)
}

func field(w io.Writer, label, value string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", labelColor.Sprint(label+":"), value)
}

// badge renders an action status in the color of its tone
func badge(status types.ActionStatus) string {
	c, ok := toneColors[status.Tone()]
	if !ok {
		c = toneColors["gray"]
	}
	return c.Sprint(status.String())
}

func renderAgentRun(w io.Writer, st usecase.AgentRunState) {
	heading(w, "Agent Runner")
	field(w, "Prompt", st.Prompt)

	if st.Error != "" {
		_, _ = errorColor.Fprintln(w, "Error: "+st.Error)
		return
	}

	r := st.Result
	if r == nil {
		return
	}
	field(w, "Status", r.Status)
	field(w, "Message", r.Message)
	field(w, "Model", r.Model)
	field(w, "Prompt sent", r.PromptSent)
	field(w, "Trust score", r.TrustScoreText())
	field(w, "Risk level", r.RiskLevel)
	field(w, "Risk flags", r.RiskFlagsText())
	field(w, "Policy decision", r.PolicyDecision)
	field(w, "Policy reasons", "")
	for _, reason := range r.PolicyReasons {
		_, _ = fmt.Fprintf(w, "  - %s\n", reason)
	}
	field(w, "Response", r.Response)
	field(w, "Explainability", r.Explainability)
}

func renderLogs(w io.Writer, st usecase.LogState) {
	heading(w, "Agent Run Logs")

	if st.Error != "" {
		_, _ = errorColor.Fprintln(w, "Error loading logs: "+st.Error)
	}

	if st.Analytics != nil {
		renderAnalytics(w, st.Analytics)
	}
	if st.AnalyticsError != "" {
		_, _ = errorColor.Fprintln(w, "Error loading analytics: "+st.AnalyticsError)
	}

	if len(st.Logs) == 0 {
		_, _ = fmt.Fprintln(w, "No logs yet.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTIME\tPROMPT\tTRUST\tRISK\tPOLICY")
	for _, l := range st.Logs {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			l.ID,
			model.FormatTimestamp(l.CreatedAt),
			oneLine(l.Prompt),
			l.TrustScoreText(),
			l.RiskLevel,
			l.PolicyDecision,
		)
	}
	_ = tw.Flush()
}

func renderAnalytics(w io.Writer, a *model.LogAnalytics) {
	field(w, "Total runs", fmt.Sprint(a.TotalRuns))
	field(w, "By risk level", countsText(a.ByRiskLevel))
	field(w, "By policy decision", countsText(a.ByPolicyDecision))
}

func countsText(counts map[string]int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}

func renderActions(w io.Writer, st usecase.ActionState) {
	title := "Actions"
	if st.StatusFilter != "" {
		title += " (" + st.StatusFilter.String() + ")"
	}
	heading(w, title)

	if len(st.Actions) == 0 {
		_, _ = fmt.Fprintln(w, "No actions found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tRUN\tTYPE\tPAYLOAD\tCREATED\tSTATUS\tRESULT")
	for _, a := range st.Actions {
		_, _ = fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			a.ID,
			a.AgentRunID,
			a.Type.String(),
			a.PayloadPreview(),
			model.FormatTimestamp(a.CreatedAt),
			badge(a.Status),
			a.ExecutionResultText(),
		)
	}
	_ = tw.Flush()
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// terminalNotifier prints notifications as they are raised
type terminalNotifier struct {
	mu sync.Mutex
	w  io.Writer
}

func newTerminalNotifier(w io.Writer) *terminalNotifier {
	return &terminalNotifier{w: w}
}

func (x *terminalNotifier) Notify(_ context.Context, n *model.Notification) {
	if n == nil {
		return
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	c := successColor
	if n.Level == model.NotificationFailure {
		c = failureColor
	}
	_, _ = c.Fprintln(x.w, n.Message)
}
