package reactor

import "testing"

func TestContextDefault(t *testing.T) {
	theme := NewContext("light")

	if theme.Default() != "light" {
		t.Errorf("expected default light, got %s", theme.Default())
	}

	// Reading without a provider yields the default
	o := NewOwner(nil)
	if got := theme.Get(o); got != "light" {
		t.Errorf("expected default light without provider, got %s", got)
	}
}

func TestContextProvideAndGet(t *testing.T) {
	theme := NewContext("light")

	root := NewOwner(nil)
	child := NewOwner(root)

	theme.Provide(root, "dark")
	if got := theme.Get(child); got != "dark" {
		t.Errorf("expected provided dark from descendant, got %s", got)
	}

	// A closer provider shadows the ancestor
	theme.Provide(child, "solarized")
	if got := theme.Get(child); got != "solarized" {
		t.Errorf("expected overriding solarized, got %s", got)
	}
	if got := theme.Get(root); got != "dark" {
		t.Errorf("expected root unchanged dark, got %s", got)
	}
}

func TestContextsAreIndependent(t *testing.T) {
	a := NewContext(1)
	b := NewContext(2)

	o := NewOwner(nil)
	a.Provide(o, 10)

	if got := a.Get(o); got != 10 {
		t.Errorf("expected context a value 10, got %d", got)
	}
	if got := b.Get(o); got != 2 {
		t.Errorf("expected context b default 2, got %d", got)
	}
}

func TestContextThroughBuilder(t *testing.T) {
	s := NewScheduler()
	theme := NewContext("light")

	var fromChild string
	NewEffect(s, "parent", func(b *Builder) {
		ProvideContext(b, theme, "dark")
		b.CreateEffect("child", func(cb *Builder) {
			fromChild = UseContext(cb, theme)
		})
	})

	if fromChild != "dark" {
		t.Errorf("expected nested effect to see dark, got %s", fromChild)
	}
}
