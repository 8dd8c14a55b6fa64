package models

import (
	"context"
	"testing"

	"github.com/casualjim/courier/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopProvider struct{ name string }

func (nopProvider) ListModels(context.Context) ([]string, error) { return nil, nil }
func (nopProvider) Generate(context.Context, provider.GenerateParams) (string, error) {
	return "", nil
}
func (nopProvider) GenerateStream(context.Context, provider.GenerateParams) (<-chan provider.StreamEvent, error) {
	return nil, nil
}
func (nopProvider) HealthCheck(context.Context) bool { return true }

func TestRegistry(t *testing.T) {
	t.Cleanup(func() {
		for _, name := range Names() {
			Del(name)
		}
	})

	Add("alpha", nopProvider{name: "alpha"})
	Add("beta", nopProvider{name: "beta"})

	got, ok := Get("alpha")
	require.True(t, ok)
	assert.Equal(t, nopProvider{name: "alpha"}, got)

	_, ok = Get("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"alpha", "beta"}, Names())

	computed := GetOrAdd("alpha", func() provider.Provider {
		t.Fatal("must not construct for an existing name")
		return nil
	})
	assert.Equal(t, nopProvider{name: "alpha"}, computed)

	Del("beta")
	_, ok = Get("beta")
	assert.False(t, ok)
}
