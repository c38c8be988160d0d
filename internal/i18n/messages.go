// Package i18n holds the user-facing messages in Chinese and English.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

const (
	LocaleZH = "zh"
	LocaleEN = "en"
)

// Message keys.
const (
	MsgImageGenerated    = "image.generated"
	MsgImageFallback     = "image.fallback"
	MsgPromptRequired    = "prompt.required"
	MsgInvalidRequest    = "request.invalid"
	MsgAPIKeyMissing     = "apikey.missing"
	MsgInvalidResponse   = "response.invalid"
	MsgGenerationFailed  = "generation.failed"
	MsgStyleTransferred  = "styletransfer.done"
	MsgStyleTransferFail = "styletransfer.failed"
	MsgUploadSucceeded   = "upload.succeeded"
	MsgNoImage           = "upload.noimage"
	MsgImagesOnly        = "upload.imagesonly"
	MsgImageTooLarge     = "upload.toolarge"
	MsgInvalidImage      = "image.invalid"
	MsgUploadFailed      = "upload.failed"
	MsgStatusDone        = "status.done"
	MsgHistoryDisabled   = "history.disabled"
	MsgHistoryFailed     = "history.failed"
	MsgRateLimited       = "ratelimit"
)

var supported = []language.Tag{language.Chinese, language.English}

var matcher = language.NewMatcher(supported)

var entries = map[string][2]string{
	MsgImageGenerated:    {"图片生成成功", "Image generated successfully"},
	MsgImageFallback:     {"图片生成成功(备用示例)", "Image generated successfully (fallback sample)"},
	MsgPromptRequired:    {"描述文本不能为空", "Prompt must not be empty"},
	MsgInvalidRequest:    {"请求格式无效", "Invalid request body"},
	MsgAPIKeyMissing:     {"API Key未配置，请在.env文件中设置DASHSCOPE_API_KEY", "API key is not configured, set DASHSCOPE_API_KEY in .env"},
	MsgInvalidResponse:   {"API返回格式无效", "Unrecognized API response"},
	MsgGenerationFailed:  {"文生图API调用失败: %s", "Text-to-image call failed: %s"},
	MsgStyleTransferred:  {"风格迁移成功", "Style transfer succeeded"},
	MsgStyleTransferFail: {"风格迁移失败: %s", "Style transfer failed: %s"},
	MsgUploadSucceeded:   {"图片上传成功", "Image uploaded successfully"},
	MsgNoImage:           {"没有收到图片", "No image received"},
	MsgImagesOnly:        {"只支持图片文件", "Only image files are supported"},
	MsgImageTooLarge:     {"图片大小不能超过%d MB", "Image must not exceed %d MB"},
	MsgInvalidImage:      {"请提供有效的图片文件", "Please provide a valid image file"},
	MsgUploadFailed:      {"图片保存失败", "Saving the image failed"},
	MsgStatusDone:        {"图片已生成", "Image is ready"},
	MsgHistoryDisabled:   {"生成记录未启用", "Generation history is not enabled"},
	MsgHistoryFailed:     {"读取生成记录失败", "Reading generation history failed"},
	MsgRateLimited:       {"请求过于频繁，请稍后再试", "Too many requests, try again later"},
}

var cat = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Chinese))
	for key, texts := range entries {
		_ = b.SetString(language.Chinese, key, texts[0])
		_ = b.SetString(language.English, key, texts[1])
	}
	return b
}

// Printer returns a message printer for locale, defaulting to Chinese.
func Printer(locale string) *message.Printer {
	tag := language.Chinese
	if Normalize(locale) == LocaleEN {
		tag = language.English
	}
	return message.NewPrinter(tag, message.Catalog(cat))
}

// T formats the message stored under key for locale.
func T(locale, key string, args ...any) string {
	return Printer(locale).Sprintf(key, args...)
}

// Match picks the best supported locale for an Accept-Language header, or ""
// when nothing in the header is supported.
func Match(acceptLanguage string) string {
	if strings.TrimSpace(acceptLanguage) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return ""
	}
	tag, _, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return ""
	}
	base, _ := tag.Base()
	return Normalize(base.String())
}

// Normalize folds a locale token to one of the supported locales.
func Normalize(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if strings.HasPrefix(locale, "en") {
		return LocaleEN
	}
	if strings.HasPrefix(locale, "zh") {
		return LocaleZH
	}
	return ""
}
