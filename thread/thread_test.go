package thread

import (
	"fmt"
	"sync"
	"testing"

	"github.com/casualjim/courier/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThread_BoundedEviction(t *testing.T) {
	store := NewStore(4)
	th := store.Get("general")

	for i := 0; i < 10; i++ {
		th.Append(provider.RoleUser, fmt.Sprintf("msg-%d", i))
	}

	messages := th.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, "msg-6", messages[0].Content, "oldest evicted first")
	assert.Equal(t, "msg-9", messages[3].Content)
}

func TestThread_MessagesReturnsCopy(t *testing.T) {
	th := NewStore(10).Get("c")
	th.Append(provider.RoleUser, "original")

	messages := th.Messages()
	messages[0].Content = "mutated"
	assert.Equal(t, "original", th.Messages()[0].Content)
}

func TestStore_GetReturnsSameThread(t *testing.T) {
	store := NewStore(10)
	assert.Same(t, store.Get("a"), store.Get("a"))
	assert.NotSame(t, store.Get("a"), store.Get("b"))
}

func TestStore_Forget(t *testing.T) {
	store := NewStore(10)
	store.Get("a").Append(provider.RoleUser, "hi")
	store.Forget("a")
	assert.Zero(t, store.Get("a").Len())
}

func TestStore_DefaultCapacity(t *testing.T) {
	store := NewStore(0)
	th := store.Get("c")
	for i := 0; i < DefaultMaxTurns+10; i++ {
		th.Append(provider.RoleUser, "x")
	}
	assert.Equal(t, DefaultMaxTurns, th.Len())
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := NewStore(1000)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				store.Get("shared").Append(provider.RoleUser, "x")
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 400, store.Get("shared").Len())
}
