// Package repohealth scores source repositories for trustworthiness.
// Score direction is trust: 0 = hollow/abandoned, 100 = healthy. This
// is the opposite convention from token risk scoring and the two are
// never combined.
package repohealth

import (
	"fmt"
	"math"

	"rugradar/internal/domain"
)

// Component weights; they sum to 100.
const (
	WeightPopularity    = 20.0
	WeightActivity      = 25.0
	WeightCommunity     = 15.0
	WeightDocumentation = 20.0
	WeightMaintenance   = 20.0
)

// Result holds the scored components and derived grade.
type Result struct {
	TrustScore float64            // 0..100
	Grade      string             // A+ | A | B | C | D | F
	Components map[string]float64 // points per component, bounded by weight
	Strengths  []string
	Risks      []domain.RiskFinding
}

// Score evaluates repository metrics as of now (Unix ms).
// An archived repository floors activity and maintenance at zero: a
// frozen codebase cannot demonstrate ongoing health regardless of its
// commit history.
func Score(m domain.RepoMetrics, now int64) Result {
	result := Result{Components: make(map[string]float64, 5)}

	popularity := scorePopularity(m)
	activity := scoreActivity(m, now)
	community := scoreCommunity(m)
	documentation := scoreDocumentation(m)
	maintenance := scoreMaintenance(m)

	if m.Archived {
		activity = 0
		maintenance = 0
	}

	result.Components["popularity"] = popularity
	result.Components["activity"] = activity
	result.Components["community"] = community
	result.Components["documentation"] = documentation
	result.Components["maintenance"] = maintenance

	result.TrustScore = popularity + activity + community + documentation + maintenance
	if result.TrustScore > 100 {
		result.TrustScore = 100
	}
	if result.TrustScore < 0 || math.IsNaN(result.TrustScore) {
		result.TrustScore = 0
	}
	result.Grade = GradeFor(result.TrustScore)

	result.collectStatements(m)
	return result
}

// GradeFor maps a trust score to a letter grade via fixed breakpoints.
func GradeFor(score float64) string {
	switch {
	case score >= 90:
		return "A+"
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "F"
	}
}

// scorePopularity awards up to WeightPopularity for stars and forks on
// a saturating scale.
func scorePopularity(m domain.RepoMetrics) float64 {
	points := saturate(float64(m.Stars), 1000) * 14
	points += saturate(float64(m.Forks), 200) * 6
	return points
}

// scoreActivity awards up to WeightActivity for recent commits and a
// recent push.
func scoreActivity(m domain.RepoMetrics, now int64) float64 {
	points := saturate(float64(m.Commits90d), 60) * 15

	// Push recency: full credit inside 30 days, fading to zero at 180.
	if m.PushedAt > 0 && now > m.PushedAt {
		days := float64(now-m.PushedAt) / float64(domain.MillisPerDay)
		switch {
		case days <= 30:
			points += 10
		case days < 180:
			points += 10 * (180 - days) / 150
		}
	}
	return points
}

// scoreCommunity awards up to WeightCommunity for contributor count.
// Zero contributors floors the component.
func scoreCommunity(m domain.RepoMetrics) float64 {
	if m.Contributors <= 0 {
		return 0
	}
	return saturate(float64(m.Contributors), 20) * WeightCommunity
}

// scoreDocumentation awards up to WeightDocumentation for README and
// license presence.
func scoreDocumentation(m domain.RepoMetrics) float64 {
	points := 0.0
	if m.HasReadme {
		points += 8
		points += saturate(float64(m.ReadmeLength), 3000) * 6
	}
	if m.HasLicense {
		points += 6
	}
	return points
}

// scoreMaintenance awards up to WeightMaintenance for tests, CI and a
// manageable issue backlog.
func scoreMaintenance(m domain.RepoMetrics) float64 {
	points := 0.0
	if m.HasTests {
		points += 8
	}
	if m.HasCI {
		points += 7
	}
	if m.OpenIssues < 200 {
		points += 5
	}
	return points
}

// saturate maps v onto [0,1] against a saturation ceiling.
func saturate(v, ceiling float64) float64 {
	if v <= 0 || ceiling <= 0 {
		return 0
	}
	if v >= ceiling {
		return 1
	}
	return v / ceiling
}

// collectStatements fills strengths and risks from the component view.
func (r *Result) collectStatements(m domain.RepoMetrics) {
	if m.Archived {
		r.Risks = append(r.Risks, domain.RiskFinding{
			Type:        "repo_archived",
			Severity:    domain.SeverityCritical,
			Confidence:  100,
			Description: "Repository is archived: no further development will happen",
		})
	}
	if m.Contributors == 0 {
		r.Risks = append(r.Risks, domain.RiskFinding{
			Type:        "no_contributors",
			Severity:    domain.SeverityHigh,
			Confidence:  90,
			Description: "No visible contributors",
		})
	}
	if !m.HasLicense {
		r.Risks = append(r.Risks, domain.RiskFinding{
			Type:        "no_license",
			Severity:    domain.SeverityMedium,
			Confidence:  80,
			Description: "No license file",
		})
	}
	if !m.HasReadme {
		r.Risks = append(r.Risks, domain.RiskFinding{
			Type:        "no_readme",
			Severity:    domain.SeverityMedium,
			Confidence:  80,
			Description: "No README",
		})
	}

	if m.Stars >= 100 {
		r.Strengths = append(r.Strengths, fmt.Sprintf("%d stars", m.Stars))
	}
	if m.Contributors >= 5 {
		r.Strengths = append(r.Strengths, fmt.Sprintf("%d contributors", m.Contributors))
	}
	if m.Commits90d >= 20 {
		r.Strengths = append(r.Strengths, fmt.Sprintf("%d commits in the last 90 days", m.Commits90d))
	}
	if m.HasTests {
		r.Strengths = append(r.Strengths, "Test suite present")
	}
	if m.HasCI {
		r.Strengths = append(r.Strengths, "CI configured")
	}
}
