package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// LocalizedName is a single-language name block.
type LocalizedName struct {
	Name string `json:"name"`
}

// PartTranslations holds part names per supported language.
type PartTranslations struct {
	EN LocalizedName `json:"en"`
	RU LocalizedName `json:"ru"`
}

// LocalizedText is a single-language name and description.
type LocalizedText struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// CategoryTranslations holds category texts per supported language.
type CategoryTranslations struct {
	EN LocalizedText `json:"en"`
	RU LocalizedText `json:"ru"`
}

// Value implements driver.Valuer for JSONB columns.
func (t PartTranslations) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB columns.
func (t *PartTranslations) Scan(src any) error {
	return scanJSON(src, t)
}

// Value implements driver.Valuer for JSONB columns.
func (t CategoryTranslations) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner for JSONB columns.
func (t *CategoryTranslations) Scan(src any) error {
	return scanJSON(src, t)
}

func scanJSON(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source %T", src)
	}
}

// ErrTranslationNameRequired is returned when the english name is missing.
var ErrTranslationNameRequired = errors.New("translations.en.name is required")
