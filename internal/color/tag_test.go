package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForTagIsDeterministic(t *testing.T) {
	assert.Equal(t, ForTag("remote-work"), ForTag("remote-work"))
	assert.NotEqual(t, ForTag("remote-work"), ForTag("urgent"))
}

func TestForTagProducesHexColor(t *testing.T) {
	hexRe := regexp.MustCompile(`^#[0-9A-F]{6}$`)
	for _, id := range []string{"remote-work", "urgent", "dream-job", ""} {
		assert.Regexp(t, hexRe, ForTag(id))
	}
}
