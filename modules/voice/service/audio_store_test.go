package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAudioObjectKey(t *testing.T) {
	key := audioObjectKey("Done. I scheduled Design Review for Monday at nine")

	assert.True(t, strings.HasPrefix(key, "tts/done-i-scheduled-design-review-for-"))
	assert.True(t, strings.HasSuffix(key, ".mp3"))
}

func TestAudioObjectKeyFallsBackForUnsluggableText(t *testing.T) {
	key := audioObjectKey("!!! ???")

	assert.True(t, strings.HasPrefix(key, "tts/speech-"))
}

func TestAudioObjectKeyIsUnique(t *testing.T) {
	a := audioObjectKey("same text")
	b := audioObjectKey("same text")

	assert.NotEqual(t, a, b)
}
