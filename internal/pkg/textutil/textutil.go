package textutil

import (
	"regexp"
	"strings"
)

// TelegramMessageLimit Telegram 单条消息长度上限（留余量）
const TelegramMessageLimit = 4000

var (
	reBold        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reBoldUnder   = regexp.MustCompile(`__(.+?)__`)
	reItalic      = regexp.MustCompile(`\*(.+?)\*`)
	reItalicUnder = regexp.MustCompile(`(^|[^\p{L}\p{N}_])_(.+?)_([^\p{L}\p{N}_]|$)`)
	reHeader      = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	reBlockquote  = regexp.MustCompile(`(?m)^>\s?`)
	reBackticks   = regexp.MustCompile("`{1,3}")
)

const variantSep = "==="

// StripMarkdown 去掉模型输出里的 markdown 标记
func StripMarkdown(text string) string {
	text = reBold.ReplaceAllString(text, "$1")
	text = reBoldUnder.ReplaceAllString(text, "$1")
	text = reItalic.ReplaceAllString(text, "$1")
	text = reItalicUnder.ReplaceAllString(text, "$1$2$3")
	text = reHeader.ReplaceAllString(text, "")
	text = reBlockquote.ReplaceAllString(text, "")
	text = reBackticks.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// SplitVariants 按 === 拆出多个变体，丢弃空段
func SplitVariants(text string) []string {
	parts := strings.Split(text, variantSep)
	variants := make([]string, 0, len(parts))
	for _, part := range parts {
		if v := strings.TrimSpace(part); v != "" {
			variants = append(variants, v)
		}
	}
	return variants
}

// Chunk 按字符数切分长文本（Telegram 按字符计长，不是字节）
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = TelegramMessageLimit
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
