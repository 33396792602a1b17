package participant

import (
	"regexp"
	"strconv"
	"strings"
)

// Default confidences used when a reply contains no explicit score.
const (
	DefaultAgreeConfidence    = 0.8
	DefaultDisagreeConfidence = 0.3
)

// Caps on extracted lists.
const (
	maxKeyPoints = 5
	maxQuestions = 3
	maxMatches   = 3
)

// Extraction holds the structured fields derived from a free-text reply.
// It is produced by pattern search only and is never an error.
type Extraction struct {
	Agreement       bool
	Confidence      float64
	KeyPoints       []string
	Questions       []string
	Recommendations []string
	Concerns        []string
	Agreements      []string
	Disagreements   []string
	Challenges      []string
	Improvements    []string
	SupportReasons  []string
	Modifications   []string
	CriticalIssues  []string
}

// confidencePatterns are tried in order; the first match wins.
var confidencePatterns = []struct {
	re       *regexp.Regexp
	outOfTen bool
}{
	{re: regexp.MustCompile(`confidence[:\s]+(\d+(?:\.\d+)?)`)},
	{re: regexp.MustCompile(`(\d+(?:\.\d+)?)[:\s]*confidence`)},
	{re: regexp.MustCompile(`(\d+)%`)},
	{re: regexp.MustCompile(`(\d+(?:\.\d+)?)/10`), outOfTen: true},
}

var keyPointPrefixes = []string{"•", "-", "*", "1.", "2.", "3."}

// Extract derives every field from text.
func Extract(text string) Extraction {
	lines := splitLines(text)
	agreement := HasAgreement(text)

	return Extraction{
		Agreement:       agreement,
		Confidence:      confidenceFor(text, agreement),
		KeyPoints:       keyPoints(lines),
		Questions:       questions(lines),
		Recommendations: linesWith(lines, "recommend"),
		Concerns:        linesWith(lines, "concern", "risk"),
		Agreements:      agreementLines(lines),
		Disagreements:   linesWith(lines, "disagree", "concern"),
		Challenges:      linesWith(lines, "challenge", "difficult"),
		Improvements:    linesWith(lines, "improve", "better"),
		SupportReasons:  linesWith(lines, "support", "because"),
		Modifications:   linesWith(lines, "modify", "change", "suggest"),
		CriticalIssues:  linesWith(lines, "critical", "must", "essential"),
	}
}

// HasAgreement reports whether text carries an agreement signal: "yes",
// "support" or "agree". The word "disagree" is not an agreement signal.
func HasAgreement(text string) bool {
	lower := strings.ToLower(text)
	if strings.Contains(lower, "yes") || strings.Contains(lower, "support") {
		return true
	}
	return containsAgree(lower)
}

// Confidence returns the explicit confidence score in text, or the default
// for the reply's agreement signal when none is present.
func Confidence(text string) float64 {
	return confidenceFor(text, HasAgreement(text))
}

func confidenceFor(text string, agreement bool) float64 {
	lower := strings.ToLower(text)
	for _, p := range confidencePatterns {
		m := p.re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if p.outOfTen {
			return min(v/10, 1.0)
		}
		return normalizeConfidence(v)
	}
	if agreement {
		return DefaultAgreeConfidence
	}
	return DefaultDisagreeConfidence
}

// normalizeConfidence maps values above 1 onto [0,1]: up to 100 is a
// percentage, anything larger is read as a tenths score and capped.
func normalizeConfidence(v float64) float64 {
	if v <= 1 {
		return v
	}
	if v <= 100 {
		v /= 100
	} else {
		v /= 10
	}
	return min(v, 1.0)
}

func containsAgree(lower string) bool {
	return strings.Contains(strings.ReplaceAll(lower, "disagree", ""), "agree")
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func keyPoints(lines []string) []string {
	var out []string
	for _, l := range lines {
		for _, p := range keyPointPrefixes {
			if strings.HasPrefix(l, p) {
				out = append(out, l)
				break
			}
		}
		if len(out) == maxKeyPoints {
			break
		}
	}
	return out
}

func questions(lines []string) []string {
	var out []string
	for _, l := range lines {
		if strings.Contains(l, "?") {
			out = append(out, l)
			if len(out) == maxQuestions {
				break
			}
		}
	}
	return out
}

// linesWith returns up to maxMatches cleaned lines containing any keyword.
func linesWith(lines []string, keywords ...string) []string {
	var out []string
	for _, l := range lines {
		lower := strings.ToLower(l)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				out = append(out, cleanLine(l))
				break
			}
		}
		if len(out) == maxMatches {
			break
		}
	}
	return out
}

func agreementLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		if containsAgree(strings.ToLower(l)) {
			out = append(out, cleanLine(l))
			if len(out) == maxMatches {
				break
			}
		}
	}
	return out
}

// cleanLine strips list markers and emphasis so equal points dedupe.
func cleanLine(l string) string {
	l = strings.TrimLeft(l, "•-*0123456789. \t")
	l = strings.ReplaceAll(l, "**", "")
	return strings.TrimSpace(l)
}
