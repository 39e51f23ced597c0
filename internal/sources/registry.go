package sources

import (
	"fmt"
	"strings"

	"CrisisMonitor/internal/config"
	"CrisisMonitor/internal/domain"
)

// Registry keeps the static (topic, region) → feed mapping in configuration order.
type Registry struct {
	pairings []domain.Pairing
	index    map[string]int
}

// NewRegistry builds the registry from topic configuration. Duplicate
// pairings and empty identifiers are rejected.
func NewRegistry(topics []config.TopicConfig) (*Registry, error) {
	r := &Registry{index: map[string]int{}}
	for _, topic := range topics {
		name := strings.TrimSpace(topic.Name)
		if name == "" {
			return nil, fmt.Errorf("topic without name")
		}
		for _, region := range topic.Regions {
			regionName := strings.TrimSpace(region.Name)
			if regionName == "" {
				return nil, fmt.Errorf("topic %s: region without name", name)
			}

			pairing := domain.Pairing{
				Topic:   name,
				Region:  regionName,
				Focus:   topic.Focus,
				Sources: cleanSources(region.Feeds),
			}
			key := pairing.String()
			if _, exists := r.index[key]; exists {
				return nil, fmt.Errorf("pairing %s declared twice", key)
			}
			r.index[key] = len(r.pairings)
			r.pairings = append(r.pairings, pairing)
		}
	}
	return r, nil
}

// Pairings returns every pairing in declaration order.
func (r *Registry) Pairings() []domain.Pairing {
	out := make([]domain.Pairing, len(r.pairings))
	copy(out, r.pairings)
	return out
}

// Lookup returns the pairing for topic and region.
func (r *Registry) Lookup(topic, region string) (domain.Pairing, bool) {
	i, ok := r.index[domain.Pairing{Topic: topic, Region: region}.String()]
	if !ok {
		return domain.Pairing{}, false
	}
	return r.pairings[i], true
}

// Sources lists the feed identifiers bound to topic and region.
func (r *Registry) Sources(topic, region string) []string {
	p, ok := r.Lookup(topic, region)
	if !ok {
		return nil
	}
	out := make([]string, len(p.Sources))
	copy(out, p.Sources)
	return out
}

func cleanSources(feeds []string) []string {
	out := make([]string, 0, len(feeds))
	for _, feed := range feeds {
		feed = strings.TrimSpace(feed)
		if feed == "" {
			continue
		}
		out = append(out, feed)
	}
	return out
}
