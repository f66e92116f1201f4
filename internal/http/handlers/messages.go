package handlers

// API error messages by locale. The upstream service historically served a
// Chinese-speaking user base, so responses carry zh translations alongside en.
var messages = map[string]map[string]string{
	"en": {
		"bad_request":         "invalid request payload",
		"prompt_required":     "prompt is required",
		"prompt_too_long":     "prompt exceeds the maximum length",
		"video_not_found":     "video task not found",
		"remix_not_completed": "only completed videos can be remixed",
		"video_not_completed": "video generation has not completed",
		"content_unavailable": "video content is not available",
		"internal":            "internal server error",
	},
	"zh": {
		"bad_request":         "请求参数无效",
		"prompt_required":     "提示词不能为空",
		"prompt_too_long":     "提示词超出最大长度",
		"video_not_found":     "视频任务不存在",
		"remix_not_completed": "只能混剪已完成的视频",
		"video_not_completed": "视频尚未完成生成",
		"content_unavailable": "视频内容不可用",
		"internal":            "服务器内部错误",
	},
}

// Message resolves a message key for the locale, falling back to English and
// finally to the key itself.
func Message(locale, key string) string {
	if catalogue, ok := messages[locale]; ok {
		if msg, ok := catalogue[key]; ok {
			return msg
		}
	}
	if msg, ok := messages["en"][key]; ok {
		return msg
	}
	return key
}
