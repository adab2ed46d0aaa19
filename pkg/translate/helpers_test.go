package translate

import (
	"strings"
	"testing"

	"github.com/chazu/kclexport/pkg/host"
	"github.com/chazu/kclexport/pkg/snapshot"
)

// newDesign returns a millimetre design whose host conversion is 1:1.
func newDesign() (*snapshot.Design, *snapshot.Component) {
	d := snapshot.New("Widget")
	d.Scale = 1
	return d, d.AddComponent(snapshot.NewComponent("Root"))
}

func unitSquare() []host.Curve {
	return snapshot.Polygon(snapshot.Pt(0, 0), snapshot.Pt(1, 0), snapshot.Pt(1, 1), snapshot.Pt(0, 1))
}

func translate(t *testing.T, d host.Design, opts Options) string {
	t.Helper()
	out, err := New(opts).Translate(d)
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	return out
}

func assertContains(t *testing.T, out string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(out, w) {
			t.Errorf("output missing %q\n%s", w, out)
		}
	}
}

func assertNotContains(t *testing.T, out string, unwanted ...string) {
	t.Helper()
	for _, w := range unwanted {
		if strings.Contains(out, w) {
			t.Errorf("output unexpectedly contains %q\n%s", w, out)
		}
	}
}

// statements returns the trimmed lines starting with prefix.
func statements(out, prefix string) []string {
	var found []string
	for _, l := range strings.Split(out, "\n") {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, prefix) {
			found = append(found, l)
		}
	}
	return found
}
