// Package profiler 推断上传 CSV 的列类型与空值数
//
// 解析规则刻意保持简单：首行按逗号切分为表头，不支持引号与转义。
package profiler

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/ashwinyue/datamimic/internal/model"
)

// SampleSize 类型推断最多检查的非空值个数
const SampleSize = 100

// Profile 数据集画像
type Profile struct {
	RowCount int                `json:"rowCount"`
	Columns  []model.ColumnInfo `json:"columns"`
}

// ColumnCount 列数
func (p Profile) ColumnCount() int {
	return len(p.Columns)
}

// Analyze 分析 CSV 文本，空文本返回零行零列
func Analyze(csvText string) Profile {
	text := strings.TrimSpace(csvText)
	if text == "" {
		return Profile{Columns: []model.ColumnInfo{}}
	}

	lines := strings.Split(text, "\n")
	headers := splitCells(lines[0])
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, splitCells(line))
	}

	columns := make([]model.ColumnInfo, len(headers))
	for i, name := range headers {
		values := make([]string, len(rows))
		for r, cells := range rows {
			if i < len(cells) {
				values[r] = cells[i]
			}
		}
		columns[i] = profileColumn(name, values)
	}

	return Profile{RowCount: len(rows), Columns: columns}
}

func splitCells(line string) []string {
	cells := strings.Split(line, ",")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func profileColumn(name string, values []string) model.ColumnInfo {
	nullCount := 0
	sampled := 0
	numeric := true
	for _, v := range values {
		if v == "" {
			nullCount++
			continue
		}
		if sampled < SampleSize {
			sampled++
			if numeric && !IsNumber(v) {
				numeric = false
			}
		}
	}

	colType := model.ColumnTypeCategorical
	if numeric {
		colType = model.ColumnTypeNumeric
	}
	return model.ColumnInfo{Name: name, Type: colType, NullCount: nullCount}
}

// IsNumber 判断单元格是否为数字
// 接受十进制与科学计数法、0x/0o/0b 整数以及 Infinity，拒绝 NaN 与下划线分隔
func IsNumber(s string) bool {
	if s == "" || strings.ContainsRune(s, '_') {
		return false
	}
	switch s {
	case "Infinity", "+Infinity", "-Infinity":
		return true
	}
	if base, digits, ok := radixPrefix(s); ok {
		if digits == "" {
			return false
		}
		_, err := strconv.ParseUint(digits, base, 64)
		return err == nil || errors.Is(err, strconv.ErrRange)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Is(err, strconv.ErrRange)
	}
	// ParseFloat 也接受 inf/nan 字面量
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func radixPrefix(s string) (int, string, bool) {
	if len(s) < 2 || s[0] != '0' {
		return 0, "", false
	}
	switch s[1] {
	case 'x', 'X':
		return 16, s[2:], true
	case 'o', 'O':
		return 8, s[2:], true
	case 'b', 'B':
		return 2, s[2:], true
	}
	return 0, "", false
}
