package heimer

import (
	"strconv"
)

func AsMap(v interface{}) map[string]interface{} {
	if v != nil {
		if m, ok := v.(map[string]interface{}); ok {
			return m
		}
	}
	return nil
}

func AsString(v interface{}) string {
	if v != nil {
		switch s := v.(type) {
		case string:
			return s
		case *string:
			return *s
		}
	}
	return ""
}

// AsBool treats any non-nil, non-bool value as true, except the strings
// "false" and "0".
func AsBool(v interface{}) bool {
	if v != nil {
		switch b := v.(type) {
		case bool:
			return b
		case string:
			return b != "false" && b != "0"
		}
		return true
	}
	return false
}

func AsInt(v interface{}) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}
