package domain

import (
	"bytes"
	"encoding/json"
	"sort"
)

// ReviewID keeps a review identifier as display text.
// The generation service sends integers today; strings are accepted as well.
type ReviewID string

// UnmarshalJSON accepts a JSON number or string.
func (id *ReviewID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ReviewID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = ReviewID(n.String())
	return nil
}

// MarshalJSON writes numeric identifiers back as numbers.
func (id ReviewID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if c := id[0]; (c == '-' || (c >= '0' && c <= '9')) && json.Valid([]byte(id)) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// SampleReview is one generated review as shown to the operator.
type SampleReview struct {
	ReviewID   ReviewID `json:"review_id"`
	ReviewText string   `json:"review_text"`
	Aspects    []string `json:"aspects"`
	Problems   []string `json:"problems"`
}

// AspectCatalog lists the aspects the generator knows about.
// Descriptors are left as raw JSON.
type AspectCatalog struct {
	TotalAspects int                        `json:"total_aspects"`
	Aspects      map[string]json.RawMessage `json:"aspects"`
}

// Names returns the aspect names in lexical order.
func (c *AspectCatalog) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.Aspects))
	for name := range c.Aspects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Synonyms decodes the descriptor of an aspect when it is a list of strings.
func (c *AspectCatalog) Synonyms(name string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	raw, ok := c.Aspects[name]
	if !ok {
		return nil, false
	}
	var synonyms []string
	if err := json.Unmarshal(raw, &synonyms); err != nil {
		return nil, false
	}
	return synonyms, true
}

// TestBatchResult describes a generated test batch.
type TestBatchResult struct {
	Message string         `json:"message"`
	File    string         `json:"file"`
	Sample  []SampleReview `json:"sample"`
}
