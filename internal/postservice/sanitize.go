package postservice

import "regexp"

// A complete element is removed with its body. A lone opening or closing tag is removed on its own.
var scriptTagRX = regexp.MustCompile(`(?is)<\s*script\b[^>]*>.*?<\s*/\s*script\s*>|<\s*/?\s*script\b[^>]*>`)

// sanitizeMarkdown strips script elements from a post body. This is tag stripping, not full
// HTML sanitization: other active content such as event handler attributes is left as is.
func sanitizeMarkdown(markdown string) string {
	return scriptTagRX.ReplaceAllString(markdown, "")
}
