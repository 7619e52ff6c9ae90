package owl

import (
	"sort"
	"strings"
)

// PrefixMap binds prefix names to namespace IRIs.
type PrefixMap map[string]string

// DefaultPrefixes returns the W3C bindings every compiled ontology carries.
func DefaultPrefixes() PrefixMap {
	return PrefixMap{
		"rdf":  NamespaceRDF,
		"rdfs": NamespaceRDFS,
		"owl":  NamespaceOWL,
		"xsd":  NamespaceXSD,
		"skos": NamespaceSKOS,
	}
}

// Bind adds or replaces a binding.
func (pm PrefixMap) Bind(prefix, namespace string) {
	pm[prefix] = namespace
}

// Has reports whether prefix is bound, ignoring case.
func (pm PrefixMap) Has(prefix string) bool {
	_, ok := pm.lookup(prefix)
	return ok
}

// Clone returns an independent copy.
func (pm PrefixMap) Clone() PrefixMap {
	out := make(PrefixMap, len(pm))
	for k, v := range pm {
		out[k] = v
	}
	return out
}

// Sorted returns the prefix names in lexical order.
func (pm PrefixMap) Sorted() []string {
	keys := make([]string, 0, len(pm))
	for k := range pm {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Expand turns "prefix:local" into a full IRI. The prefix is matched
// case-insensitively, as "XSD:string" appears in hand-written sources.
func (pm PrefixMap) Expand(name string) (string, bool) {
	prefix, local, ok := strings.Cut(name, ":")
	if !ok || IsAbsoluteIRI(name) {
		return "", false
	}
	ns, ok := pm.lookup(prefix)
	if !ok {
		return "", false
	}
	return ns + local, true
}

// Compact turns a full IRI into "prefix:local" using the longest matching
// namespace. Ties are broken by prefix name so output is stable.
func (pm PrefixMap) Compact(iri string) (string, bool) {
	best, bestNS := "", ""
	for _, prefix := range pm.Sorted() {
		ns := pm[prefix]
		if ns == "" || !strings.HasPrefix(iri, ns) || len(ns) <= len(bestNS) {
			continue
		}
		if !isLocalName(iri[len(ns):]) {
			continue
		}
		best, bestNS = prefix, ns
	}
	if bestNS == "" {
		return "", false
	}
	return best + ":" + iri[len(bestNS):], true
}

func (pm PrefixMap) lookup(prefix string) (string, bool) {
	if ns, ok := pm[prefix]; ok {
		return ns, true
	}
	lower := strings.ToLower(prefix)
	for _, k := range pm.Sorted() {
		if strings.ToLower(k) == lower {
			return pm[k], true
		}
	}
	return "", false
}

// IsAbsoluteIRI reports whether s is an http(s) or urn IRI.
func IsAbsoluteIRI(s string) bool {
	return strings.HasPrefix(s, "http://") ||
		strings.HasPrefix(s, "https://") ||
		strings.HasPrefix(s, "urn:")
}

// isLocalName is a conservative check for a Turtle PN_LOCAL.
func isLocalName(s string) bool {
	if s == "" {
		return false
	}
	if s[0] == '-' || s[0] == '.' || s[len(s)-1] == '.' {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return true
}
