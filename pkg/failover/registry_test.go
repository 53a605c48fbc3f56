package failover_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praveentcom/basepack-sub001/pkg/failover"
)

type providerConfig struct {
	Name  string
	Token string
}

func testRegistry(built *[]*stubProvider) *failover.Registry[msg, providerConfig] {
	r := failover.NewRegistry[msg, providerConfig]()
	r.Register("good", func(_ context.Context, cfg providerConfig) (failover.Provider[msg], error) {
		p := newStub(cfg.Name+":"+cfg.Token, deliverAll(cfg.Token))
		*built = append(*built, p)
		return p, nil
	})
	r.Register("bad", func(context.Context, providerConfig) (failover.Provider[msg], error) {
		return nil, errors.New("missing api key")
	})
	return r
}

func chainSpec(primary providerConfig, backups ...providerConfig) failover.ChainSpec[providerConfig] {
	return failover.ChainSpec[providerConfig]{
		Primary: primary,
		Backups: backups,
		NameOf:  func(c providerConfig) string { return c.Name },
	}
}

func TestRegistry_Build(t *testing.T) {
	t.Parallel()

	var built []*stubProvider
	r := testRegistry(&built)
	assert.Equal(t, []string{"bad", "good"}, r.Names())

	p, err := r.Build(context.Background(), "good", providerConfig{Name: "good", Token: "t"})
	require.NoError(t, err)
	assert.Equal(t, "good:t", p.Name())

	_, err = r.Build(context.Background(), "nope", providerConfig{})
	require.ErrorIs(t, err, failover.ErrUnknownProvider)
}

func TestRegistry_BuildChain(t *testing.T) {
	t.Parallel()

	t.Run("strict fails and closes built providers", func(t *testing.T) {
		t.Parallel()
		var built []*stubProvider
		r := testRegistry(&built)

		_, _, err := r.BuildChain(context.Background(), chainSpec(
			providerConfig{Name: "good", Token: "a"},
			providerConfig{Name: "good", Token: "b"},
			providerConfig{Name: "bad"},
		))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing api key")
		require.Len(t, built, 2)
		assert.True(t, built[0].closed)
		assert.True(t, built[1].closed)
	})

	t.Run("lenient skips broken backups", func(t *testing.T) {
		t.Parallel()
		var built []*stubProvider
		r := testRegistry(&built)

		spec := chainSpec(
			providerConfig{Name: "good", Token: "a"},
			providerConfig{Name: "bad"},
			providerConfig{Name: "good", Token: "c"},
		)
		spec.Lenient = true

		primary, backups, err := r.BuildChain(context.Background(), spec)
		require.NoError(t, err)
		assert.Equal(t, "good:a", primary.Name())
		require.Len(t, backups, 1)
		assert.Equal(t, "good:c", backups[0].Name())
	})

	t.Run("primary failure is never lenient", func(t *testing.T) {
		t.Parallel()
		var built []*stubProvider
		r := testRegistry(&built)

		spec := chainSpec(providerConfig{Name: "bad"})
		spec.Lenient = true
		_, _, err := r.BuildChain(context.Background(), spec)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "primary provider")
	})

	t.Run("unknown backup", func(t *testing.T) {
		t.Parallel()
		var built []*stubProvider
		r := testRegistry(&built)

		_, _, err := r.BuildChain(context.Background(), chainSpec(
			providerConfig{Name: "good", Token: "a"},
			providerConfig{Name: "missing"},
		))
		require.ErrorIs(t, err, failover.ErrUnknownProvider)
	})
}
