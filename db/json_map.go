package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	var source []byte
	switch s := src.(type) {
	case nil:
		*m = JSONMap{}
		return nil
	case []byte:
		source = s
	case string:
		source = []byte(s)
	default:
		return fmt.Errorf("unsupported data type: %T", src)
	}
	return json.Unmarshal(source, m)
}
