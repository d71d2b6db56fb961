package decode

import (
	"fmt"
	"sort"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
)

// Candidate is one possible charset for a byte sequence.
type Candidate struct {
	Charset    string
	Confidence int
}

// DetectCharset returns ranked charset candidates for data, most
// confident first. Only charsets the decoder can actually resolve are
// kept, and ties are broken by name so selection is deterministic.
func DetectCharset(data []byte) ([]Candidate, error) {
	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil {
		return nil, fmt.Errorf("%w: charset detection: %v", ErrDecode, err)
	}

	candidates := make([]Candidate, 0, len(results))
	for _, r := range results {
		if _, err := htmlindex.Get(strings.ToLower(r.Charset)); err != nil {
			continue
		}
		candidates = append(candidates, Candidate{Charset: r.Charset, Confidence: r.Confidence})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].Charset < candidates[j].Charset
	})

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no usable charset detected", ErrDecode)
	}
	return candidates, nil
}
