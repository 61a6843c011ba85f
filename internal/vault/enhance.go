package vault

// EnhancePrompt returns text unchanged. No model is called.
func EnhancePrompt(text string) string {
	return text
}

// SuggestTags returns no suggestions. No model is called.
func SuggestTags(content string) []string {
	return nil
}
