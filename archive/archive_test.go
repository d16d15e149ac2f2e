package archive

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	require.Equal(t, "audit/sess-1/000007", Key("audit", "sess-1", 7))
	require.Equal(t, "sess-1/000007", Key("", "sess-1", 7))
}

func TestNopArchiver(t *testing.T) {
	require.NoError(t, NopArchiver{}.Archive(context.Background(), "sess-1", 0, 0x9000, "ok"))
}
