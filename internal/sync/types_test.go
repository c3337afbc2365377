package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUpstream(t *testing.T) {
	ref, err := ParseUpstream("acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, UpstreamRef{Owner: "acme", Repo: "widgets"}, ref)
	assert.Equal(t, "acme/widgets", ref.String())
}

func TestParseUpstream_Invalid(t *testing.T) {
	for _, input := range []string{"", "acme", "acme/", "/widgets", "a/b/c"} {
		_, err := ParseUpstream(input)
		assert.Error(t, err, "input %q", input)
	}
}
