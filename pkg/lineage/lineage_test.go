package lineage

import (
	"testing"

	"github.com/chazu/kclexport/pkg/host"
	"github.com/chazu/kclexport/pkg/snapshot"
	"github.com/rs/zerolog"
)

func newExtrude(name string) *snapshot.Extrude {
	return snapshot.NewExtrude(name, nil, host.DistanceExtent{Distance: 1})
}

func TestRegisterStrategies(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		comp := snapshot.NewComponent("Root")
		ext := newExtrude("Extrude1")
		b := comp.AddBody(snapshot.NewBody("Body1", nil))
		ext.BodyList = []*snapshot.Body{b}

		tr := New(zerolog.Nop())
		if got := tr.RegisterExtrude(ext, comp, "extrude1"); got != DirectBodies.Name {
			t.Fatalf("strategy = %q, want %q", got, DirectBodies.Name)
		}
		if v, ok := tr.Resolve(b); !ok || v != "extrude1" {
			t.Errorf("Resolve = %q, %v", v, ok)
		}
	})

	t.Run("sole body", func(t *testing.T) {
		comp := snapshot.NewComponent("Root")
		ext := newExtrude("Extrude1")
		ext.BodiesErr = host.ErrUnavailable
		b := comp.AddBody(snapshot.NewBody("Body1", nil))

		tr := New(zerolog.Nop())
		if got := tr.RegisterExtrude(ext, comp, "extrude1"); got != SoleComponentBody.Name {
			t.Fatalf("strategy = %q", got)
		}
		if v, _ := tr.Resolve(b); v != "extrude1" {
			t.Errorf("Resolve = %q", v)
		}
	})

	t.Run("creator match", func(t *testing.T) {
		comp := snapshot.NewComponent("Root")
		ext1, ext2 := newExtrude("Extrude1"), newExtrude("Extrude2")
		comp.AddBody(snapshot.NewBody("Body1", ext1))
		b2 := comp.AddBody(snapshot.NewBody("Body2", ext2))
		comp.AddBody(snapshot.NewBody("Body3", nil))

		tr := New(zerolog.Nop())
		if got := tr.RegisterExtrude(ext2, comp, "extrude2"); got != CreatorMatch.Name {
			t.Fatalf("strategy = %q", got)
		}
		if v, _ := tr.Resolve(b2); v != "extrude2" {
			t.Errorf("Resolve = %q", v)
		}
	})

	t.Run("most recent", func(t *testing.T) {
		comp := snapshot.NewComponent("Root")
		ext := newExtrude("Extrude1")
		comp.AddBody(snapshot.NewBody("Body1", nil))
		last := comp.AddBody(snapshot.NewBody("Body2", nil))

		tr := New(zerolog.Nop())
		if got := tr.RegisterExtrude(ext, comp, "extrude1"); got != MostRecentBody.Name {
			t.Fatalf("strategy = %q", got)
		}
		if v, _ := tr.Resolve(last); v != "extrude1" {
			t.Errorf("Resolve = %q", v)
		}
	})

	t.Run("nothing", func(t *testing.T) {
		comp := snapshot.NewComponent("Root")
		comp.BodiesErr = host.ErrUnavailable
		tr := New(zerolog.Nop())
		if got := tr.RegisterExtrude(newExtrude("Extrude1"), comp, "extrude1"); got != "" {
			t.Fatalf("strategy = %q, want none", got)
		}
		if v, ok := tr.Feature("extrude/Extrude1"); !ok || v != "extrude1" {
			t.Errorf("feature mapping missing: %q %v", v, ok)
		}
	})
}

func TestCustomStrategyOrder(t *testing.T) {
	comp := snapshot.NewComponent("Root")
	ext := newExtrude("Extrude1")
	first := comp.AddBody(snapshot.NewBody("Body1", nil))
	ext.BodyList = []*snapshot.Body{comp.AddBody(snapshot.NewBody("Body2", nil))}

	// Most-recent first: it wins even though direct bodies exist.
	tr := New(zerolog.Nop(), MostRecentBody, DirectBodies)
	if got := tr.RegisterExtrude(ext, comp, "extrude1"); got != MostRecentBody.Name {
		t.Fatalf("strategy = %q", got)
	}
	if _, ok := tr.Resolve(first); ok {
		t.Error("first body must stay unmapped")
	}
}

func TestResolveThroughCreator(t *testing.T) {
	ext := newExtrude("Extrude1")
	ext.BodiesErr = host.ErrUnavailable
	comp := snapshot.NewComponent("Root")
	comp.BodiesErr = host.ErrUnavailable

	tr := New(zerolog.Nop())
	tr.RegisterRevolve(ext, comp, "revolve1")

	b := snapshot.NewBody("Body1", ext)
	if v, ok := tr.Resolve(b); !ok || v != "revolve1" {
		t.Fatalf("Resolve = %q, %v", v, ok)
	}

	// Cached: the creator link is no longer needed.
	b.Creator = nil
	if v, ok := tr.Resolve(b); !ok || v != "revolve1" {
		t.Errorf("cached Resolve = %q, %v", v, ok)
	}
	if len(tr.Extrudes()) != 0 {
		t.Error("revolve registered as extrude")
	}
}

func TestResolveFailures(t *testing.T) {
	tr := New(zerolog.Nop())
	if _, ok := tr.Resolve(nil); ok {
		t.Error("nil body resolved")
	}
	if _, ok := tr.Resolve(snapshot.NewBody("Orphan", nil)); ok {
		t.Error("body without creator resolved")
	}
	if _, ok := tr.Resolve(snapshot.NewBody("Stranger", newExtrude("Unknown"))); ok {
		t.Error("body with untranslated creator resolved")
	}
}

func TestRegisterCombineRemapsTarget(t *testing.T) {
	comp := snapshot.NewComponent("Root")
	ext := newExtrude("Extrude1")
	target := comp.AddBody(snapshot.NewBody("Body1", ext))
	ext.BodyList = []*snapshot.Body{target}

	tr := New(zerolog.Nop())
	tr.RegisterExtrude(ext, comp, "extrude1")
	combine := snapshot.NewCombine("Combine1", host.OpCut, target)
	tr.RegisterCombine(combine, target, "solid003", "extrude1", "extrude2")

	if v, _ := tr.Resolve(target); v != "solid003" {
		t.Errorf("target resolves to %q, want combine result", v)
	}
	if v, _ := tr.Feature(combine.Token()); v != "solid003" {
		t.Errorf("combine feature maps to %q", v)
	}
}

func TestPositional(t *testing.T) {
	tr := New(zerolog.Nop())
	comp := snapshot.NewComponent("Root")
	comp.BodiesErr = host.ErrUnavailable

	if _, _, ok := tr.Positional(); ok {
		t.Fatal("positional with no extrudes")
	}
	tr.RegisterExtrude(newExtrude("E1"), comp, "extrude1")
	if _, _, ok := tr.Positional(); ok {
		t.Fatal("positional with one extrude")
	}
	tr.RegisterExtrude(newExtrude("E2"), comp, "extrude2")
	tr.RegisterExtrude(newExtrude("E3"), comp, "extrude3")

	target, tool, ok := tr.Positional()
	if !ok || target != "extrude1" || tool != "extrude2" {
		t.Fatalf("first combine = %q, %q, %v", target, tool, ok)
	}
	tr.RegisterCombine(snapshot.NewCombine("C1", host.OpCut, nil), nil, "solid004", target, tool)

	target, tool, _ = tr.Positional()
	if target != "solid004" || tool != "extrude3" {
		t.Fatalf("second combine = %q, %q", target, tool)
	}
	tr.RegisterCombine(snapshot.NewCombine("C2", host.OpCut, nil), nil, "solid005", target, tool)

	// Everything consumed: back to the first two extrudes.
	target, tool, _ = tr.Positional()
	if target != "extrude1" || tool != "extrude2" {
		t.Errorf("exhausted = %q, %q", target, tool)
	}
}
