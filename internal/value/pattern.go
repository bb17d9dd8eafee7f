package value

import (
	"fmt"
	"regexp"
	"sync"
)

var (
	patternCacheMu sync.RWMutex
	patternCache   = map[string]*regexp.Regexp{}
)

func compilePattern(pattern string) (*regexp.Regexp, error) {
	patternCacheMu.RLock()
	re, ok := patternCache[pattern]
	patternCacheMu.RUnlock()
	if ok {
		return re, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	patternCacheMu.Lock()
	patternCache[pattern] = re
	patternCacheMu.Unlock()
	return re, nil
}

func matchPattern(col ColumnSpec, v Value) error {
	re, err := compilePattern(col.Pattern)
	if err != nil {
		return fmt.Errorf("invalid pattern %q for column %q: %w", col.Pattern, col.Name, err)
	}
	s, ok := v.StringVal()
	if !ok {
		return fmt.Errorf("pattern constraint on non-string value")
	}
	if !re.MatchString(s) {
		return fmt.Errorf("value %q does not match pattern %q", s, col.Pattern)
	}
	return nil
}
