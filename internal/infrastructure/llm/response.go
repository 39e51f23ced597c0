package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"CrisisMonitor/internal/domain"
)

var (
	// ErrUnparseableResponse means the classifier output is not a JSON object or array of objects.
	ErrUnparseableResponse = errors.New("unparseable classifier response")
	// ErrNoClassification means the output was well formed but carried no object.
	ErrNoClassification = errors.New("classifier returned no classification")
)

const fence = "```"

type rawClassification struct {
	IsRelevant        json.RawMessage `json:"is_relevant"`
	TitleEN           string          `json:"title_en"`
	SummaryEN         string          `json:"summary_en"`
	TitleTranslated   string          `json:"title_translated"`
	SummaryTranslated string          `json:"summary_translated"`
	TitleTR           string          `json:"title_tr"`
	SummaryTR         string          `json:"summary_tr"`
	LocationName      string          `json:"location_name"`
	Severity          json.RawMessage `json:"severity"`
}

// ParseClassification normalises a raw classifier reply into a Classification.
// Markdown code fences are stripped and array replies are reduced to their
// first element.
func ParseClassification(raw string) (domain.Classification, error) {
	body := stripFence(raw)
	if body == "" || body == "null" {
		return domain.Classification{}, ErrNoClassification
	}

	payload := []byte(body)
	switch body[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(payload, &items); err != nil {
			return domain.Classification{}, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
		}
		if len(items) == 0 {
			return domain.Classification{}, ErrNoClassification
		}
		first := strings.TrimSpace(string(items[0]))
		if first == "null" {
			return domain.Classification{}, ErrNoClassification
		}
		if !strings.HasPrefix(first, "{") {
			return domain.Classification{}, fmt.Errorf("%w: array element is not an object", ErrUnparseableResponse)
		}
		payload = []byte(first)
	case '{':
	default:
		return domain.Classification{}, fmt.Errorf("%w: unexpected leading %q", ErrUnparseableResponse, body[0])
	}

	var rc rawClassification
	if err := json.Unmarshal(payload, &rc); err != nil {
		return domain.Classification{}, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}

	return rc.normalize(), nil
}

func (rc rawClassification) normalize() domain.Classification {
	return domain.Classification{
		IsRelevant:        parseBool(rc.IsRelevant),
		TitleOriginal:     strings.TrimSpace(rc.TitleEN),
		SummaryOriginal:   strings.TrimSpace(rc.SummaryEN),
		TitleTranslated:   strings.TrimSpace(firstNonEmpty(rc.TitleTranslated, rc.TitleTR)),
		SummaryTranslated: strings.TrimSpace(firstNonEmpty(rc.SummaryTranslated, rc.SummaryTR)),
		LocationName:      strings.TrimSpace(rc.LocationName),
		Severity:          parseSeverity(rc.Severity),
	}
}

func stripFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, fence) {
		return s
	}
	s = strings.TrimPrefix(s, fence)
	if i := strings.IndexAny(s, "{[\n"); i >= 0 {
		s = s[i:]
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// parseBool treats absent, null and unrecognised values as false.
func parseBool(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		return err == nil && v
	}
	return false
}

// parseSeverity falls back to the mid-scale default for missing, malformed
// or out-of-range values.
func parseSeverity(raw json.RawMessage) int {
	if len(raw) == 0 {
		return domain.DefaultSeverity
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return domain.DefaultSeverity
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return domain.DefaultSeverity
		}
		n = parsed
	}

	if math.IsNaN(n) || n < 1 || n > 10 {
		return domain.DefaultSeverity
	}
	return int(math.Round(n))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
