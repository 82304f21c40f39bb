package cache

import (
	"fmt"
	"reflect"
	"strings"
)

// KeySeparator joins the parts of a key built by Key.
const KeySeparator = "-"

// nullToken renders an absent key part.
const nullToken = "null"

// Key builds a deterministic cache key from parts joined by KeySeparator.
// Nil values (including typed nil pointers) render as "null" and non-nil
// pointers are dereferenced, so optional query parameters can be passed as-is:
//
//	cache.Key("students", age, sort, id) // "students-20-asc-null"
func Key(parts ...any) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteString(KeySeparator)
		}
		b.WriteString(keyPart(p))
	}
	return b.String()
}

func keyPart(p any) string {
	if p == nil {
		return nullToken
	}
	switch v := p.(type) {
	case string:
		return v
	case *string:
		if v == nil {
			return nullToken
		}
		return *v
	case *int:
		if v == nil {
			return nullToken
		}
		return fmt.Sprint(*v)
	case *int64:
		if v == nil {
			return nullToken
		}
		return fmt.Sprint(*v)
	}
	rv := reflect.ValueOf(p)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nullToken
		}
		return fmt.Sprint(rv.Elem().Interface())
	}
	return fmt.Sprint(p)
}

// RemovePrefix deletes every entry whose key starts with prefix and returns
// the number of removed entries.
func RemovePrefix[V any](c *Cache[string, V], prefix string) int {
	return c.RemoveIf(func(k string) bool {
		return strings.HasPrefix(k, prefix)
	})
}
