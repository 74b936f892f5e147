package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// RunReport renders a retention run into a plain-text summary and hands it
// to the notification capability. Dispatch failures are reported to the
// caller for logging but must never fail the run.
type RunReport struct {
	Result RunResult
}

// Subject produces a one-line summary suitable for an email subject.
func (r RunReport) Subject(prefix string) string {
	subject := fmt.Sprintf(
		"retention run %s: %d purged, %d evicted",
		r.Result.StartedAt.Format("2006-01-02"),
		r.Result.RecordsPurgedByAge,
		r.Result.RecordsEvictedByQuota,
	)
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return subject
	}
	return prefix + " " + subject
}

// Body renders the account totals, a table of accounts ranked by record
// count, and a highlighted cleanup section when anything was deleted.
func (r RunReport) Body() string {
	result := r.Result

	var b strings.Builder
	fmt.Fprintf(&b, "Retention run started %s\n", result.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Age cutoff: %s\n\n", result.Cutoff.Format(time.RFC3339))

	fmt.Fprintf(&b, "Accounts:  %d\n", len(result.Accounts))
	fmt.Fprintf(&b, "Endpoints: %d\n", result.TotalEndpoints())
	fmt.Fprintf(&b, "Records:   %d\n", result.TotalRecords())
	fmt.Fprintf(&b, "Stored:    %s\n\n", formatBytes(result.TotalBytes()))

	if result.RecordsPurgedByAge > 0 || result.RecordsEvictedByQuota > 0 {
		b.WriteString("=== CLEANUP ===\n")
		fmt.Fprintf(&b, "Purged by age:    %d\n", result.RecordsPurgedByAge)
		fmt.Fprintf(&b, "Evicted by quota: %d\n", result.RecordsEvictedByQuota)
		if skipped := result.AccountsSkipped(); skipped > 0 {
			fmt.Fprintf(&b, "Accounts skipped: %d\n", skipped)
		}
		for _, enforcement := range result.Enforcements {
			if enforcement.CapReached {
				fmt.Fprintf(&b, "Eviction cap reached for account %s (still over budget)\n", enforcement.AccountID)
			}
		}
		b.WriteString("\n")
	}

	ranked := append([]AccountUsage(nil), result.Accounts...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RecordCount != ranked[j].RecordCount {
			return ranked[i].RecordCount > ranked[j].RecordCount
		}
		return ranked[i].Identifier < ranked[j].Identifier
	})

	b.WriteString("Top accounts by record count:\n")
	for _, usage := range ranked {
		identifier := usage.Identifier
		if identifier == "" {
			identifier = usage.AccountID
		}
		fmt.Fprintf(&b, "  %-32s %8d records %6d endpoints %12s\n",
			identifier, usage.RecordCount, usage.EndpointCount, formatBytes(usage.TotalBytes))
	}

	return b.String()
}

// dispatchReport sends the rendered run report. A missing recipient skips
// dispatch with a warning; a sender failure is logged and swallowed.
func (s *Service) dispatchReport(ctx context.Context, result RunResult) {
	if s == nil {
		return
	}
	recipient := strings.TrimSpace(s.config.Report.Recipient)
	if recipient == "" {
		s.logWarn(ctx, "report dispatch skipped: no recipient configured", map[string]any{
			"event_type": "report_skipped",
		})
		return
	}
	if s.notifier == nil {
		s.logWarn(ctx, "report dispatch skipped: no notification sender configured", map[string]any{
			"event_type": "report_skipped",
			"recipient":  recipient,
		})
		return
	}

	report := RunReport{Result: result}
	msg := ReportMessage{
		Subject:   report.Subject(s.config.Report.SubjectPrefix),
		Body:      report.Body(),
		Recipient: recipient,
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logError(ctx, "report dispatch failed", map[string]any{
			"event_type": "report_failed",
			"error":      err.Error(),
			"error_code": RetentionErrorNotifyFailed,
			"recipient":  recipient,
		})
		s.recordCounter(ctx, "retention.report_dispatch.total", 1, map[string]string{
			"operation": "report_dispatch",
			"status":    "failure",
		})
		return
	}
	s.recordCounter(ctx, "retention.report_dispatch.total", 1, map[string]string{
		"operation": "report_dispatch",
		"status":    "success",
	})
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
