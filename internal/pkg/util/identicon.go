package util

import (
	"hash/fnv"
	"strconv"
	"strings"
)

// colorPalette 头像占位底色，按哈希取模选取
var colorPalette = []string{
	"#E0F2FE", "#DBEAFE", "#E0E7FF", "#EDE9FE", "#F3E8FF",
	"#FAE8FF", "#FCE7F3", "#FFE4E6", "#FEE2E2", "#FFEDD5",
	"#FEF3C7", "#FEF9C3", "#ECFCCB", "#DCFCE7", "#D1FAE5",
	"#CCFBF1", "#CFFAFE", "#F1F5F9", "#F4F4F5", "#F5F5F5",
	"#F5F5F4",
}

func fnv1a32(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32()
}

// ShortID 将任意字符串键映射为 6 位大写 base36 短标识，用于无名用户的展示回退
func ShortID(key string) string {
	base36 := strconv.FormatUint(uint64(fnv1a32(key)), 36)
	if len(base36) < 6 {
		base36 = strings.Repeat("0", 6-len(base36)) + base36
	}
	return strings.ToUpper(base36[:6])
}

// ColorFor 将任意字符串键映射为固定调色板中的一个底色
func ColorFor(key string) string {
	return colorPalette[int(fnv1a32(key))%len(colorPalette)]
}
