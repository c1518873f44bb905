package research

import (
	"testing"

	"execmind/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearcherFromConfig(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Research.Enabled = false
		s, closeFn := NewSearcherFromConfig(cfg)
		assert.IsType(t, Disabled{}, s)
		require.NoError(t, closeFn())
	})

	t.Run("html with cache", func(t *testing.T) {
		cfg := config.DefaultConfig()
		s, closeFn := NewSearcherFromConfig(cfg)
		defer closeFn()
		c, ok := s.(*Cache)
		require.True(t, ok)
		assert.IsType(t, &HTMLSearcher{}, c.next)
	})

	t.Run("browser without cache does not launch", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Research.Backend = "browser"
		cfg.Research.CacheTTL = "0s"
		s, closeFn := NewSearcherFromConfig(cfg)
		assert.IsType(t, &BrowserSearcher{}, s)
		require.NoError(t, closeFn())
	})
}
