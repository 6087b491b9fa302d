package kafka

import (
	"strconv"
)

// Canal 事件类型
const (
	INSERT = "INSERT"
	UPDATE = "UPDATE"
	DELETE = "DELETE"
)

// CanalMessage 定义了 Canal 推送到 Kafka 的 JSON 数据结构
type CanalMessage struct {
	ID       int64    `json:"id"`
	Database string   `json:"database"`
	Table    string   `json:"table"`
	PKNames  []string `json:"pkNames"`
	IsDDL    bool     `json:"isDdl"`
	Type     string   `json:"type"`
	ES       int64    `json:"es"`
	TS       int64    `json:"ts"`
	SQL      string   `json:"sql"`

	// Data 存储变更后的数据
	Data []map[string]interface{} `json:"data"`

	// Old 存储变更前的数据，只包含发生变化的列
	Old []map[string]interface{} `json:"old"`

	// 字段类型元数据
	SqlType   map[string]int    `json:"sqlType"`   // JDBC 类型 ID
	MysqlType map[string]string `json:"mysqlType"` // MySQL 类型描述
}

// StrToUint64 Canal 的列值默认是字符串，NULL 或无法解析时返回 0
func StrToUint64(v interface{}) uint64 {
	switch val := v.(type) {
	case string:
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			return 0
		}
		return n
	case float64:
		return uint64(val)
	case uint64:
		return val
	case int64:
		return uint64(val)
	}
	return 0
}

// StrValue 取字符串列，NULL 返回空串
func StrValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
