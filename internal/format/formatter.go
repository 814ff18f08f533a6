package format

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"FinSight/internal/domain/models"
)

// The output vocabulary is closed: hedging terms are permitted, directive
// verbs, guarantees, explicit price targets, and urgency words are not. Every
// summary passes through Sanitize before it leaves the core.

// HedgingTerms are the permitted qualifiers; summaries lean on these instead
// of directives or predictions.
var HedgingTerms = []string{"may", "could", "consider", "if"}

// rewrites maps forbidden terms to hedged substitutes. Terms mapping to the
// empty string cannot be rewritten and cause rejection.
var rewrites = map[string]string{
	"buy":          "accumulation may be considered",
	"sell":         "reduction may be considered",
	"must":         "may",
	"should":       "could",
	"will rise":    "may strengthen",
	"will fall":    "may weaken",
	"guaranteed":   "",
	"certainly":    "",
	"definitely":   "",
	"price target": "",
	"target price": "",
	"immediately":  "",
	"urgent":       "",
	"act now":      "",
	"hurry":        "",
	"don't miss":   "",
}

// Violations returns the forbidden terms present in text, sorted, without
// duplicates.
func Violations(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for term := range rewrites {
		if !strings.Contains(lower, term) {
			continue
		}
		// Whole-word match only; "buyer" must not trip on "buy".
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
		if re.MatchString(lower) {
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}

// Sanitize rewrites forbidden terms where a hedged substitute exists and
// rejects the text when any non-rewritable term remains.
func Sanitize(text string) (string, error) {
	terms := make([]string, 0, len(rewrites))
	for term := range rewrites {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	for _, term := range terms {
		sub := rewrites[term]
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
		if !re.MatchString(text) {
			continue
		}
		if sub == "" {
			return "", fmt.Errorf("forbidden term %q cannot be rewritten", term)
		}
		text = re.ReplaceAllString(text, sub)
	}
	return text, nil
}

// Summary renders the human-readable justification under the vocabulary
// policy: hedged, non-directive, no predictions.
func Summary(res *models.AnalysisResult) (string, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s reads %s (%s, confidence %.2f).",
		res.Ticker, res.Signal.Type, res.Signal.Strength, res.Signal.Confidence)

	if len(res.Signal.Reasoning.Primary) > 0 {
		fmt.Fprintf(&b, " Supporting factors: %s.", strings.Join(res.Signal.Reasoning.Primary, "; "))
	}
	if len(res.Signal.Reasoning.Contradicting) > 0 {
		fmt.Fprintf(&b, " Contradicting factors: %s.", strings.Join(res.Signal.Reasoning.Contradicting, "; "))
	}

	fmt.Fprintf(&b, " Overall risk is %s", res.Risk.Overall)
	if res.Risk.Actionable {
		b.WriteString("; conditions may be worth a closer look if they fit your tolerance.")
	} else {
		b.WriteString("; conditions do not clear the actionability bar.")
	}

	if len(res.Detections) > 0 {
		tags := make([]string, len(res.Detections))
		for i, d := range res.Detections {
			tags[i] = string(d.Tag)
		}
		fmt.Fprintf(&b, " Short-horizon watch items: %s (severity %s).",
			strings.Join(tags, ", "), res.Severity)
	}

	if len(res.Regime.Labels) > 0 {
		labels := make([]string, len(res.Regime.Labels))
		for i, l := range res.Regime.Labels {
			labels[i] = string(l)
		}
		fmt.Fprintf(&b, " Market regime: %s.", strings.Join(labels, ", "))
	}

	if res.Provenance != models.ProvenanceLive && res.Provenance != models.ProvenanceCacheFresh {
		fmt.Fprintf(&b, " Data served from %s; readings could lag the market.", res.Provenance)
	}

	return Sanitize(b.String())
}
