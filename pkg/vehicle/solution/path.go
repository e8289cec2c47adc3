package solution

import (
	"fmt"
	"net/url"
	"strings"
)

// EncodePath renders selections as "mark=option" pairs joined by "&".
// Names are query-escaped so they may contain any character.
func EncodePath(path []Selection) string {
	parts := make([]string, len(path))
	for i, s := range path {
		parts[i] = url.QueryEscape(s.Mark) + "=" + url.QueryEscape(s.Option)
	}
	return strings.Join(parts, "&")
}

// DecodePath parses the output of EncodePath. Order is preserved.
func DecodePath(value string) ([]Selection, error) {
	if value == "" {
		return nil, fmt.Errorf("empty mark path")
	}

	pairs := strings.Split(value, "&")
	path := make([]Selection, 0, len(pairs))
	for i, pair := range pairs {
		rawMark, rawOption, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("pair %d %q is not mark=option", i+1, pair)
		}
		mark, err := url.QueryUnescape(rawMark)
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i+1, err)
		}
		option, err := url.QueryUnescape(rawOption)
		if err != nil {
			return nil, fmt.Errorf("pair %d: %w", i+1, err)
		}
		if mark == "" || option == "" {
			return nil, fmt.Errorf("pair %d %q has an empty name", i+1, pair)
		}
		path = append(path, Selection{Mark: mark, Option: option})
	}
	return path, nil
}
