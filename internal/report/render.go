// Package report renders analysis results for terminals and Markdown.
// Degraded signals are always rendered in their own section so "we
// could not check" never reads as "checked and clean".
package report

import (
	"fmt"
	"sort"
	"strings"

	"rugradar/internal/domain"
)

// RenderTokenText renders a TokenReport for terminal output.
func RenderTokenText(r *domain.TokenReport) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Token: %s\n", r.Mint))
	sb.WriteString(fmt.Sprintf("Analysis: %s\n", r.AnalysisID))

	if !r.Found {
		if r.Error != "" {
			sb.WriteString(fmt.Sprintf("ERROR: %s\n", r.Error))
			if r.RiskScore > 0 {
				sb.WriteString(fmt.Sprintf("Risk score: %d/100 (%s)\n", r.RiskScore, r.Verdict))
			}
		} else {
			sb.WriteString("Token not found.\n")
		}
		sb.WriteString(r.Recommendation + "\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Risk score: %d/100\n", r.RiskScore))
	sb.WriteString(fmt.Sprintf("Verdict: %s\n", r.Verdict))

	if len(r.Risks) > 0 {
		sb.WriteString("\nRisks:\n")
		for _, f := range r.Risks {
			sb.WriteString(fmt.Sprintf("  [%s] %s (confidence %d%%)\n",
				strings.ToUpper(string(f.Severity)), f.Description, f.Confidence))
		}
	}

	if len(r.Strengths) > 0 {
		sb.WriteString("\nStrengths:\n")
		for _, s := range r.Strengths {
			sb.WriteString(fmt.Sprintf("  + %s\n", s))
		}
	}

	if len(r.DegradedSignals) > 0 {
		sb.WriteString("\nUnverified signals (no data, NOT cleared):\n")
		for _, source := range sortedKeys(r.DegradedSignals) {
			sb.WriteString(fmt.Sprintf("  ? %s: %s\n", source, r.DegradedSignals[source]))
		}
	}

	sb.WriteString("\n" + r.Recommendation + "\n")
	return sb.String()
}

// RenderTokenMarkdown renders a TokenReport as Markdown.
func RenderTokenMarkdown(r *domain.TokenReport) string {
	var sb strings.Builder

	sb.WriteString("# Token Risk Report\n\n")
	sb.WriteString(fmt.Sprintf("Mint: `%s`\n\n", r.Mint))
	sb.WriteString(fmt.Sprintf("Analysis ID: `%s`\n\n", r.AnalysisID))

	if !r.Found {
		if r.Error != "" {
			sb.WriteString(fmt.Sprintf("## Analysis Failed\n\n%s\n\n", r.Error))
		} else {
			sb.WriteString("## Token Not Found\n\n")
		}
		sb.WriteString(r.Recommendation + "\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("## Verdict: %s (%d/100)\n\n", r.Verdict, r.RiskScore))

	if len(r.Components) > 0 {
		sb.WriteString("## Score Components\n\n")
		sb.WriteString("| Component | Points |\n")
		sb.WriteString("|-----------|--------|\n")
		for _, name := range sortedKeys(r.Components) {
			sb.WriteString(fmt.Sprintf("| %s | %.1f |\n", name, r.Components[name]))
		}
		sb.WriteString("\n")
	}

	if len(r.Risks) > 0 {
		sb.WriteString("## Risks\n\n")
		sb.WriteString("| Severity | Finding | Confidence |\n")
		sb.WriteString("|----------|---------|------------|\n")
		for _, f := range r.Risks {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d%% |\n",
				strings.ToUpper(string(f.Severity)), f.Description, f.Confidence))
		}
		sb.WriteString("\n")
	}

	if len(r.Strengths) > 0 {
		sb.WriteString("## Strengths\n\n")
		for _, s := range r.Strengths {
			sb.WriteString(fmt.Sprintf("- %s\n", s))
		}
		sb.WriteString("\n")
	}

	if len(r.DegradedSignals) > 0 {
		sb.WriteString("## Unverified Signals\n\n")
		sb.WriteString("These sources returned no data. The checks did NOT pass; they did not run.\n\n")
		for _, source := range sortedKeys(r.DegradedSignals) {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", source, r.DegradedSignals[source]))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Recommendation\n\n")
	sb.WriteString(r.Recommendation + "\n")
	return sb.String()
}

// RenderRepoMarkdown renders a RepoReport as Markdown.
func RenderRepoMarkdown(r *domain.RepoReport) string {
	var sb strings.Builder

	sb.WriteString("# Repository Trust Report\n\n")
	sb.WriteString(fmt.Sprintf("Repository: %s\n\n", r.RepoURL))

	if !r.Found {
		if r.Error != "" {
			sb.WriteString(fmt.Sprintf("## Lookup Failed\n\n%s\n", r.Error))
		} else {
			sb.WriteString("## Repository Not Found\n")
		}
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("## Grade: %s (trust score %.0f/100)\n\n", r.Grade, r.TrustScore))

	if len(r.Components) > 0 {
		sb.WriteString("## Components\n\n")
		sb.WriteString("| Component | Points |\n")
		sb.WriteString("|-----------|--------|\n")
		for _, name := range sortedKeys(r.Components) {
			sb.WriteString(fmt.Sprintf("| %s | %.1f |\n", name, r.Components[name]))
		}
		sb.WriteString("\n")
	}

	if len(r.Risks) > 0 {
		sb.WriteString("## Concerns\n\n")
		for _, f := range r.Risks {
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", strings.ToUpper(string(f.Severity)), f.Description))
		}
		sb.WriteString("\n")
	}

	if len(r.Strengths) > 0 {
		sb.WriteString("## Strengths\n\n")
		for _, s := range r.Strengths {
			sb.WriteString(fmt.Sprintf("- %s\n", s))
		}
		sb.WriteString("\n")
	}

	if r.Recommendation != "" {
		sb.WriteString("## Recommendation\n\n")
		sb.WriteString(r.Recommendation + "\n")
	}
	return sb.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
