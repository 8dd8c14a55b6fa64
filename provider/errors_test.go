package provider

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuotaError(t *testing.T) {
	t.Run("message without retry hint", func(t *testing.T) {
		err := &QuotaError{Provider: "openai", Model: "gpt-4o-mini"}
		assert.Equal(t, `openai: quota exhausted for model "gpt-4o-mini"`, err.Error())
	})

	t.Run("message with retry hint", func(t *testing.T) {
		err := &QuotaError{Provider: "openrouter", Model: "m", RetryAfter: 30 * time.Second}
		assert.Contains(t, err.Error(), "retry after 30s")
	})
}

func TestIsQuotaExhausted(t *testing.T) {
	qe := &QuotaError{Provider: "openai", Model: "m"}

	assert.True(t, IsQuotaExhausted(qe))
	assert.True(t, IsQuotaExhausted(fmt.Errorf("generation failed: %w", qe)))
	assert.False(t, IsQuotaExhausted(errors.New("generation failed")))
	assert.False(t, IsQuotaExhausted(nil))
}
