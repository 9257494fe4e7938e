package context

import (
	"context"
	"testing"
)

func TestUserID(t *testing.T) {
	ctx := context.Background()
	if _, ok := UserIDFromContext(ctx); ok {
		t.Error("UserIDFromContext() on empty context reported a value")
	}

	ctx = WithUsername(WithUserID(ctx, 7), "alice")
	if id, ok := UserIDFromContext(ctx); !ok || id != 7 {
		t.Errorf("UserIDFromContext() = %d, %v", id, ok)
	}
	if got := UsernameFromContext(ctx); got != "alice" {
		t.Errorf("UsernameFromContext() = %s", got)
	}
	if got := MustUserIDFromContext(ctx); got != 7 {
		t.Errorf("MustUserIDFromContext() = %d", got)
	}
}

func TestMustUserIDFromContext_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustUserIDFromContext(context.Background())
}
