package linkedin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsEmptyLine(t *testing.T) {
	assert.True(t, IsEmptyLine(""))
	assert.True(t, IsEmptyLine("   "))
	assert.True(t, IsEmptyLine("      "))
	assert.True(t, IsEmptyLine("\t "))
	assert.False(t, IsEmptyLine(" -"))
	assert.False(t, IsEmptyLine("Broadridge"))
}

func TestIsHyphenSeparatorLine(t *testing.T) {
	assert.True(t, IsHyphenSeparatorLine("----"))
	assert.True(t, IsHyphenSeparatorLine("-------------------"))
	assert.True(t, IsHyphenSeparatorLine("   ---"))
	assert.False(t, IsHyphenSeparatorLine("---- 123"))
	assert.False(t, IsHyphenSeparatorLine("---- "))
	assert.False(t, IsHyphenSeparatorLine(""))
	assert.False(t, IsHyphenSeparatorLine("    "))
}

func TestLinkFromLine(t *testing.T) {
	link, ok := linkFromLine("View job:   https://www.linkedin.com/comm/jobs/view/1/")
	assert.True(t, ok)
	assert.Equal(t, "https://www.linkedin.com/comm/jobs/view/1/", link)

	_, ok = linkFromLine("View job:https://no-space.example")
	assert.False(t, ok)
	_, ok = linkFromLine("  View job: https://indented.example")
	assert.False(t, ok)
}
