package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSON stores an opaque JSON blob in a jsonb column. Widget configs are kept
// opaque here and only interpreted by the reporting layer at read time.
type JSON json.RawMessage

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return "{}", nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = JSON("{}")
	case []byte:
		*j = JSON(append([]byte(nil), v...))
	case string:
		*j = JSON(v)
	default:
		return errors.New("unsupported type for JSON column")
	}
	return nil
}

func (j JSON) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("{}"), nil
	}
	return j, nil
}

func (j *JSON) UnmarshalJSON(data []byte) error {
	if !json.Valid(data) {
		return errors.New("invalid JSON value")
	}
	*j = JSON(append([]byte(nil), data...))
	return nil
}

func (JSON) GormDataType() string { return "jsonb" }
