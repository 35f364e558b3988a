package models

import (
	"database/sql/driver"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// JSON is a wrapper around gorm.io/datatypes.JSON to allow for custom data type mapping
type JSON struct {
	datatypes.JSON
}

// NewJSON marshals v into a JSON column value
func NewJSON(v interface{}) (JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return JSON{}, err
	}
	return JSON{JSON: datatypes.JSON(b)}, nil
}

// Decode unmarshals the column value into v. An empty column leaves v untouched.
func (j JSON) Decode(v interface{}) error {
	if len(j.JSON) == 0 {
		return nil
	}
	return json.Unmarshal(j.JSON, v)
}

// Value promotes the embedded JSON's Value method
func (j JSON) Value() (driver.Value, error) {
	return j.JSON.Value()
}

// Scan promotes the embedded JSON's Scan method
func (j *JSON) Scan(value interface{}) error {
	return j.JSON.Scan(value)
}

// GormDBDataType ensures the correct data type is used for each database driver.
// MSSQL does not support the 'json' data type.
func (JSON) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
