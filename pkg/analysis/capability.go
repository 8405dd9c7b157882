package analysis

import "strings"

// Capability identifies one kind of analysis a provider can perform.
type Capability int

const (
	Sentiment Capability = iota + 1
	NER
	Classification
)

var capabilityNames = map[Capability]string{
	Sentiment:      "Sentiment Analysis",
	NER:            "Named Entity Recognition",
	Classification: "Text Classification",
}

var capabilitySlugs = map[Capability]string{
	Sentiment:      "sentiment",
	NER:            "ner",
	Classification: "classification",
}

// All returns every capability in display order.
func All() []Capability {
	return []Capability{Sentiment, NER, Classification}
}

// String returns the display name, e.g. "Sentiment Analysis".
func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "Unknown"
}

// Slug returns the short lowercase identifier used in config and file names.
func (c Capability) Slug() string {
	return capabilitySlugs[c]
}

// ParseCapability accepts a display name or slug, case-insensitively.
func ParseCapability(s string) (Capability, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, c := range All() {
		if key == strings.ToLower(capabilityNames[c]) || key == capabilitySlugs[c] {
			return c, nil
		}
	}
	return 0, &UnsupportedCapabilityError{Capability: s}
}
