package models

type TableDependency struct {
	TableName string   `json:"table_name"`
	DependsOn []string `json:"depends_on"` // Tables that must be created first
	Level     int      `json:"level"`      // Depth level in dependency tree
}
