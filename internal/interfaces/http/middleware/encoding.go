package middleware

import (
	"bytes"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// EnsureUTF8Body 把请求体统一转成 UTF-8
// Content-Type 声明了 charset 时按声明解码；
// 未声明且内容不是合法 UTF-8 时按 GBK 尝试（Windows 中文终端下的 curl）
func EnsureUTF8Body() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			c.Next()
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		c.Request.Body.Close()
		if err != nil {
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
			c.Next()
			return
		}

		converted := toUTF8(body, c.ContentType(), charsetOf(c.GetHeader("Content-Type")))
		c.Request.Body = io.NopCloser(bytes.NewReader(converted))
		c.Request.ContentLength = int64(len(converted))

		c.Next()
	}
}

// charsetOf 解析 Content-Type 中的 charset 参数
func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(params["charset"]))
}

// toUTF8 转换失败或结果不是合法 UTF-8 时返回原始数据
func toUTF8(body []byte, mediaType, charset string) []byte {
	var enc encoding.Encoding
	switch {
	case charset != "" && charset != "utf-8" && charset != "utf8":
		e, err := htmlindex.Get(charset)
		if err != nil {
			return body
		}
		enc = e
	case utf8.Valid(body):
		return body
	case strings.HasPrefix(mediaType, "multipart/"):
		// 二进制上传不做猜测
		return body
	default:
		enc = simplifiedchinese.GBK
	}

	out, err := io.ReadAll(transform.NewReader(bytes.NewReader(body), enc.NewDecoder()))
	if err != nil || !utf8.Valid(out) {
		return body
	}
	return out
}
