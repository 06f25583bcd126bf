package turnclient

import "roborail-assistant/internal/domain/turn"

// annotationKey is the identity under which citations are deduplicated.
// File-backed citations are identified by type and file id, URL citations by
// type and URL.
func annotationKey(a turn.Annotation) string {
	switch a.Type {
	case turn.AnnotationURLCitation:
		return a.Type + "|" + a.URL
	default:
		return a.Type + "|" + a.FileID
	}
}

// DedupeAnnotations drops repeated citations, keeping the first occurrence
// of each identity. The operation is idempotent.
func DedupeAnnotations(annotations []turn.Annotation) []turn.Annotation {
	seen := make(map[string]struct{}, len(annotations))
	out := make([]turn.Annotation, 0, len(annotations))
	for _, a := range annotations {
		key := annotationKey(a)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// MergeAnnotations appends incoming citations to existing ones, skipping
// identities already present. Existing order is preserved.
func MergeAnnotations(existing, incoming []turn.Annotation) []turn.Annotation {
	seen := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		seen[annotationKey(a)] = struct{}{}
	}
	out := existing
	for _, a := range incoming {
		key := annotationKey(a)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}
