// Package identity maps free-text entity names from the external feeds
// onto the canonical names used by the reconciled dataset.
package identity

import (
	"sort"
	"strings"
	"unicode"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LabelUnknown is returned when no tier matches. Unknown results are
// surfaced for manual follow-up, never silently misclassified.
const LabelUnknown = "unknown"

// Tier records which resolution stage produced a classification, so
// callers can distinguish confident matches from best-effort ones.
type Tier int

const (
	TierNone Tier = iota
	TierExact
	TierNormalized
	TierSubstring
)

func (t Tier) String() string {
	switch t {
	case TierExact:
		return "exact"
	case TierNormalized:
		return "normalized"
	case TierSubstring:
		return "substring"
	default:
		return "none"
	}
}

// Resolution is a classification label plus the tier that produced it.
type Resolution struct {
	Label string `json:"label"`
	Tier  Tier   `json:"-"`
}

var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases, trims, folds accents and collapses inner runs of
// whitespace. "María  López " and "maria lopez" normalize identically.
func Normalize(name string) string {
	folded, _, err := transform.String(accentFolder, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

// CanonicalKey is the accumulator-map key for an entity name. Slugging
// merges case/accent variants of the same entity across feeds.
func CanonicalKey(name string) string {
	return slug.Make(name)
}

type feedEntry struct {
	key        string
	normalized string
	label      string
}

// Resolver classifies canonical entity names against the external
// name→label feed through a ranked three-tier pipeline.
type Resolver struct {
	exact   map[string]string
	entries []feedEntry // sorted by key for deterministic fallback order
	log     *zap.Logger
}

// NewResolver builds a resolver over the classification feed.
func NewResolver(labels map[string]string, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{
		exact:   make(map[string]string, len(labels)),
		entries: make([]feedEntry, 0, len(labels)),
		log:     log.Named("identity.resolver"),
	}
	for key, label := range labels {
		r.exact[key] = label
		r.entries = append(r.entries, feedEntry{
			key:        key,
			normalized: Normalize(key),
			label:      label,
		})
	}
	sort.Slice(r.entries, func(i, j int) bool { return r.entries[i].key < r.entries[j].key })
	return r
}

// Resolve classifies a canonical entity name. Resolution order: exact
// key match, then normalized match, then substring containment in either
// direction. First match wins; a miss yields the explicit unknown label.
//
// The substring tier can match a shorter name contained in a longer one
// ("Ana" inside "Anabel"); callers should treat TierSubstring results as
// best-effort.
func (r *Resolver) Resolve(name string) Resolution {
	if label, ok := r.exact[name]; ok {
		return Resolution{Label: label, Tier: TierExact}
	}

	normalized := Normalize(name)
	for _, e := range r.entries {
		if e.normalized == normalized {
			return Resolution{Label: e.label, Tier: TierNormalized}
		}
	}

	if normalized != "" {
		for _, e := range r.entries {
			if e.normalized == "" {
				continue
			}
			if strings.Contains(normalized, e.normalized) || strings.Contains(e.normalized, normalized) {
				return Resolution{Label: e.label, Tier: TierSubstring}
			}
		}
	}

	r.log.Warn("unresolved entity classification", zap.String("name", name))
	return Resolution{Label: LabelUnknown, Tier: TierNone}
}
