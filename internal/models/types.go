package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// StringArray is a list of strings stored as a JSON text column. Scan also
// accepts the PostgreSQL array literal form ({a,b,c}) for rows written by
// older clients.
type StringArray []string

// Scan implements the sql.Scanner interface
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return s.Scan(string(v))
	case string:
		v = strings.TrimSpace(v)
		if v == "" || v == "{}" || v == "[]" {
			*s = StringArray{}
			return nil
		}

		if strings.HasPrefix(v, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err != nil {
				return fmt.Errorf("failed to decode StringArray: %w", err)
			}
			*s = arr
			return nil
		}

		// PostgreSQL array format: {value1,value2,value3}
		trimmed := strings.Trim(v, "{}")
		parts := strings.Split(trimmed, ",")
		result := make([]string, len(parts))
		for i, part := range parts {
			result[i] = strings.Trim(strings.TrimSpace(part), "\"")
		}
		*s = result
		return nil
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}
}

// Value implements the driver.Valuer interface
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "[]", nil
	}

	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, fmt.Errorf("failed to encode StringArray: %w", err)
	}
	return string(b), nil
}

// RawPost is a scraped candidate post exactly as the vendor returned it.
// Field names vary by actor and query type; see the content package for
// the lookup tables.
type RawPost map[string]any
