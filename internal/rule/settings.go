package rule

import "fmt"

// SettingInt converts a settings value to int. YAML decodes numbers as
// int or float64 depending on context.
func SettingInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// SettingFloat converts a settings value to float64.
func SettingFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// SettingSeverity converts a settings value to a Severity.
func SettingSeverity(ruleName string, v any) (Severity, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%s: severity must be a string, got %T", ruleName, v)
	}
	sev, ok := ParseSeverity(s)
	if !ok {
		return "", fmt.Errorf("%s: invalid severity %q (valid: critical, high, medium, low, info)", ruleName, s)
	}
	return sev, nil
}
