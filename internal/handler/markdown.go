package handler

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// renderMarkdown 将习惯描述/打卡备注渲染为净化后的 HTML
func renderMarkdown(source string) string {
	source = strings.TrimSpace(source)
	if source == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(source), &buf); err != nil {
		// 渲染失败时退回纯文本，界面始终有内容可展示
		return sanitizer.Sanitize(source)
	}

	return sanitizer.Sanitize(buf.String())
}
