package handlers

// MaxPromptLength exposes maxPromptLength to external tests.
const MaxPromptLength = maxPromptLength
