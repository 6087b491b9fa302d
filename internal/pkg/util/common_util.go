package util

import (
	"Agora/internal/pkg/consts"
	"math"
	"strconv"
	"strings"
)

// NormalizePage 将页码与分页大小限制在合法范围内，并返回 offset。
// 页码上限保证 offset 不会溢出，超出数据范围的页返回空列表。
func NormalizePage(page, pageSize int) (int, int, int) {
	if page < 1 {
		page = consts.DefaultPage
	}
	if pageSize < 1 {
		pageSize = consts.DefaultPageSize
	}
	if pageSize > consts.MaxPageSize {
		pageSize = consts.MaxPageSize
	}
	if maxPage := math.MaxInt / pageSize; page > maxPage {
		page = maxPage
	}
	return page, pageSize, (page - 1) * pageSize
}

// TotalPages 计算总页数，至少为 1
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// StrSliceToUInt64Slice 字符串切片转 uint64 切片
func StrSliceToUInt64Slice(strs []string) ([]uint64, error) {
	res := make([]uint64, 0, len(strs))
	for _, s := range strs {
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return nil, err
		}
		res = append(res, v)
	}
	return res, nil
}

// ParseUint64List 解析逗号分隔的 id 列表，如 "1,2,3"
func ParseUint64List(raw string) ([]uint64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return StrSliceToUInt64Slice(parts)
}

// UniqueUint64 去重并保持原有顺序
func UniqueUint64(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	res := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		res = append(res, id)
	}
	return res
}

// IsBlank 判断字符串是否为空或只包含空白
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
