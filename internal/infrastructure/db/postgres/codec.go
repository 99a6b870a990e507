package postgres

import (
	"strconv"
	"strings"
)

// Department links and labels are kept as comma separated text columns, the
// wire format the frontend already speaks. NULL means "none".

func encodeIDList(ids []int64) *string {
	if len(ids) == 0 {
		return nil
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	s := strings.Join(parts, ",")
	return &s
}

func decodeIDList(s *string) []int64 {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	var out []int64
	for _, part := range strings.Split(*s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func encodeStrList(vals []string) *string {
	if len(vals) == 0 {
		return nil
	}
	s := strings.Join(vals, ",")
	return &s
}

func decodeStrList(s *string) []string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(*s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
