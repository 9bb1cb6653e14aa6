package pkg

import "strings"

// SlugifyChannelName 频道名归一化：小写，非 [a-z0-9-] 全部折叠成 '-'，去掉首尾 '-'
// "My Cool Channel!" -> "my-cool-channel"；全非法字符时返回空串，由调用方报 ValidationError
func SlugifyChannelName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return strings.Trim(collapseDashes(b.String()), "-")
}

// SanitizeFileName 上传文件名清洗：小写，保留 [a-z0-9.-_]，其余替换为 '-'
func SanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return collapseDashes(b.String())
}

func collapseDashes(s string) string {
	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}
	return s
}
