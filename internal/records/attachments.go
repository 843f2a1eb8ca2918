package records

import "strings"

// attachmentSeparator joins attachment paths in the persisted column.
const attachmentSeparator = ";"

// SplitAttachments decodes the persisted semicolon-joined attachment column.
func SplitAttachments(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, attachmentSeparator)
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// JoinAttachments encodes an attachment list for persistence.
func JoinAttachments(paths []string) string {
	return strings.Join(paths, attachmentSeparator)
}

// AppendAttachments concatenates src onto dst preserving order, skipping
// paths dst already holds. Dedupe is by exact path string only; content is
// never inspected.
func AppendAttachments(dst, src []string) []string {
	if len(src) == 0 {
		return dst
	}
	seen := make(map[string]struct{}, len(dst))
	for _, p := range dst {
		seen[p] = struct{}{}
	}
	for _, p := range src {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		dst = append(dst, p)
	}
	return dst
}
