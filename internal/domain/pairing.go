package domain

import "fmt"

// GlobalRegion is the catch-all region scope.
const GlobalRegion = "Global"

// Pairing is one (topic, region) combination and the feeds bound to it.
type Pairing struct {
	Topic   string
	Region  string
	Focus   string
	Sources []string
}

// Is reports whether the pairing matches the given topic and region.
func (p Pairing) Is(topic, region string) bool {
	return p.Topic == topic && p.Region == region
}

// IsGlobal reports whether the pairing covers the catch-all region.
func (p Pairing) IsGlobal() bool {
	return p.Region == GlobalRegion
}

func (p Pairing) String() string {
	return fmt.Sprintf("%s/%s", p.Topic, p.Region)
}
