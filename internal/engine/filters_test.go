package engine

import "testing"

func TestChainAppendDoesNotAlias(t *testing.T) {
	base := make(Chain, 0, 8)
	base = append(base, HighPass{Frequency: 30, Poles: 2})

	a := base.Append(Limiter{CeilingDB: -1})
	b := base.Append(StereoTools{MidLevel: 1, SideLevel: 1.05})

	if len(base) != 1 {
		t.Fatalf("base mutated: %d filters", len(base))
	}
	if a[1].FilterName() != "limiter" || b[1].FilterName() != "stereotools" {
		t.Fatalf("chains share storage: a=%v b=%v", a[1].FilterName(), b[1].FilterName())
	}
}
