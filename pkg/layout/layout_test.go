package layout

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/dihm/leveldiagram/pkg/diagram"
)

func mustAdd(t *testing.T, errs ...error) {
	t.Helper()
	for _, err := range errs {
		if err != nil {
			t.Fatalf("building diagram: %v", err)
		}
	}
}

func TestBuildPreservesEnergyOrdering(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "a", Energy: 0}),
		d.AddLevel(diagram.Level{ID: "b", Energy: 2.5}),
		d.AddLevel(diagram.Level{ID: "c", Energy: 1.1}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	ya := segmentY(t, g, "a")
	yb := segmentY(t, g, "b")
	yc := segmentY(t, g, "c")
	if !(ya < yc && yc < yb) {
		t.Errorf("y ordering violated: a=%v c=%v b=%v", ya, yc, yb)
	}
}

func TestBuildLogScaleOrdering(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "a", Energy: 1}),
		d.AddLevel(diagram.Level{ID: "b", Energy: 10}),
		d.AddLevel(diagram.Level{ID: "c", Energy: 100}),
	)

	g, err := Build(d, Config{Scale: AutoLogScale(d.Levels())})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	ya, yb, yc := segmentY(t, g, "a"), segmentY(t, g, "b"), segmentY(t, g, "c")
	if !(ya < yb && yb < yc) {
		t.Errorf("log scale ordering violated: %v %v %v", ya, yb, yc)
	}
	if math.Abs((yb-ya)-(yc-yb)) > 1e-9 {
		t.Errorf("log scale should space decades evenly: %v vs %v", yb-ya, yc-yb)
	}
}

func TestSameGroupCollisionSeparation(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "a", Energy: 1.0, Group: "m"}),
		d.AddLevel(diagram.Level{ID: "b", Energy: 1.0, Group: "m"}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	sa, _ := g.Level("a")
	sb, _ := g.Level("b")
	if sa.Segment.Right() > sb.Segment.Left() && sb.Segment.Right() > sa.Segment.Left() {
		t.Errorf("colliding levels overlap horizontally: a=%+v b=%+v", sa.Segment, sb.Segment)
	}
	// Insertion order wins the earlier slot.
	if sa.Segment.Left() >= sb.Segment.Left() {
		t.Errorf("first-inserted level should take the earlier slot: a.left=%v b.left=%v",
			sa.Segment.Left(), sb.Segment.Left())
	}
}

func TestDistinctEnergiesShareSlot(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "a", Energy: 0, Group: "m"}),
		d.AddLevel(diagram.Level{ID: "b", Energy: 1, Group: "m"}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	sa, _ := g.Level("a")
	sb, _ := g.Level("b")
	if sa.Segment.CenterX() != sb.Segment.CenterX() {
		t.Errorf("well-separated levels should share a slot: %v vs %v",
			sa.Segment.CenterX(), sb.Segment.CenterX())
	}
}

func TestXOffsetOverride(t *testing.T) {
	x := 7.5
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "a", Energy: 0, Group: "m"}),
		d.AddLevel(diagram.Level{ID: "pinned", Energy: 0, Group: "m", XOffset: &x}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	sp, _ := g.Level("pinned")
	if sp.Segment.CenterX() != 7.5 {
		t.Errorf("pinned center = %v, want 7.5", sp.Segment.CenterX())
	}
}

func TestSimpleTransitionScenario(t *testing.T) {
	// Levels A(0, g0) and B(1, g0) with a single A→B transition: direct
	// path, no parallel offset.
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "A", Energy: 0, Group: "g0"}),
		d.AddLevel(diagram.Level{ID: "B", Energy: 1, Group: "g0"}),
		d.AddTransition(diagram.Transition{From: "A", To: "B"}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if segmentY(t, g, "A") >= segmentY(t, g, "B") {
		t.Error("y(A) should be below y(B)")
	}

	if len(g.Transitions) != 1 {
		t.Fatalf("got %d transitions, want 1", len(g.Transitions))
	}
	tr := g.Transitions[0]
	if tr.GroupSize != 1 || tr.GroupIndex != 0 {
		t.Errorf("group = %d/%d, want 0/1", tr.GroupIndex, tr.GroupSize)
	}

	sa, _ := g.Level("A")
	if tr.Points.Start().X != sa.Segment.CenterX() {
		t.Errorf("k=1 path should attach at the segment midpoint without offset: %v vs %v",
			tr.Points.Start().X, sa.Segment.CenterX())
	}
	if tr.Head == nil || tr.Head.Y != segmentY(t, g, "B") {
		t.Errorf("arrowhead should sit on the target level: %+v", tr.Head)
	}
}

func TestParallelGroupFanning(t *testing.T) {
	// A→B, B→A, A→B: three distinct paths, duplicates spaced apart from
	// each other and from the opposite-direction member.
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "A", Energy: 0}),
		d.AddLevel(diagram.Level{ID: "B", Energy: 1}),
		d.AddTransition(diagram.Transition{From: "A", To: "B"}),
		d.AddTransition(diagram.Transition{From: "B", To: "A"}),
		d.AddTransition(diagram.Transition{From: "A", To: "B"}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(g.Transitions) != 3 {
		t.Fatalf("got %d paths, want 3", len(g.Transitions))
	}

	xs := make([]float64, 3)
	for i, tr := range g.Transitions {
		if tr.GroupSize != 3 {
			t.Errorf("transition %d GroupSize = %d, want 3", i, tr.GroupSize)
		}
		xs[i] = tr.Points.Start().X
	}
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			if xs[i] == xs[j] {
				t.Errorf("paths %d and %d coincide at x=%v", i, j, xs[i])
			}
		}
	}

	// Same-direction members fill the inner slots; the reverse member sits
	// on the outer edge of the fan.
	if g.Transitions[1].GroupIndex != 2 {
		t.Errorf("opposite-direction member GroupIndex = %d, want 2", g.Transitions[1].GroupIndex)
	}
}

func TestParallelSpacingNonDecreasing(t *testing.T) {
	spacingFor := func(k int) float64 {
		d := diagram.New()
		mustAdd(t,
			d.AddLevel(diagram.Level{ID: "A", Energy: 0}),
			d.AddLevel(diagram.Level{ID: "B", Energy: 1}),
		)
		for i := 0; i < k; i++ {
			mustAdd(t, d.AddTransition(diagram.Transition{From: "A", To: "B"}))
		}
		g, err := Build(d, Config{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		minGap := math.Inf(1)
		for i := range g.Transitions {
			for j := i + 1; j < len(g.Transitions); j++ {
				gap := math.Abs(g.Transitions[i].Points.Start().X - g.Transitions[j].Points.Start().X)
				minGap = math.Min(minGap, gap)
			}
		}
		return minGap
	}

	s2, s5 := spacingFor(2), spacingFor(5)
	if s5 < s2-1e-12 {
		t.Errorf("adjacent spacing shrank with group size: k=2 → %v, k=5 → %v", s2, s5)
	}
}

func TestSelfTransitionLoop(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "A", Energy: 0}),
		d.AddTransition(diagram.Transition{From: "A", To: "A"}),
		d.AddTransition(diagram.Transition{From: "A", To: "A"}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	sa, _ := g.Level("A")
	for i, tr := range g.Transitions {
		if len(tr.Points) < 3 {
			t.Errorf("loop %d should have multiple control points, got %d", i, len(tr.Points))
		}
		for _, p := range tr.Points {
			if p.X < sa.Segment.Right()-1e-9 {
				t.Errorf("loop %d strays left of the anchor side: %+v", i, p)
				break
			}
		}
	}
	// Parallel loops must not coincide.
	if reflect.DeepEqual(g.Transitions[0].Points, g.Transitions[1].Points) {
		t.Error("parallel self-loops coincide")
	}
}

func TestDecayTransitionWavyPath(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "e", Energy: 1}),
		d.AddLevel(diagram.Level{ID: "g", Energy: 0}),
		d.AddTransition(diagram.Transition{From: "e", To: "g", Style: diagram.StyleDecay}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	tr := g.Transitions[0]
	if len(tr.Points) < 50 {
		t.Fatalf("wavy path has %d points, want a dense polyline", len(tr.Points))
	}
	// The wave must actually deviate from the straight line.
	var deviated bool
	for _, p := range tr.Points {
		if math.Abs(p.X-tr.Points.Start().X) > 1e-6 {
			deviated = true
			break
		}
	}
	if !deviated {
		t.Error("decay path never deviates from the vertical line")
	}
}

func TestDetuningLowersArrival(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "g", Energy: 0}),
		d.AddLevel(diagram.Level{ID: "e", Energy: 1}),
		d.AddTransition(diagram.Transition{From: "g", To: "e", Detuning: 0.2}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	tr := g.Transitions[0]
	if tr.Head == nil {
		t.Fatal("missing head")
	}
	want := 0.8
	if math.Abs(tr.Head.Y-want) > 1e-9 {
		t.Errorf("detuned arrival y = %v, want %v", tr.Head.Y, want)
	}
}

func TestTwoWayTransitionHasTail(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "g", Energy: 0}),
		d.AddLevel(diagram.Level{ID: "e", Energy: 1}),
		d.AddTransition(diagram.Transition{From: "g", To: "e", Style: diagram.StyleTwoWay}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	tr := g.Transitions[0]
	if tr.Head == nil || tr.Tail == nil {
		t.Fatalf("two-way transition needs both arrowheads: head=%v tail=%v", tr.Head, tr.Tail)
	}
}

func TestBuildDeterministic(t *testing.T) {
	build := func() Geometry {
		d := diagram.New()
		mustAdd(t,
			d.AddLevel(diagram.Level{ID: "g", Energy: 0, Group: "l"}),
			d.AddLevel(diagram.Level{ID: "e", Energy: 1, Group: "l"}),
			d.AddLevel(diagram.Level{ID: "r", Energy: 1.05, Group: "l"}),
			d.AddLevel(diagram.Level{ID: "x", Energy: 0.5, Group: "r"}),
			d.AddTransition(diagram.Transition{From: "g", To: "e", Label: "probe"}),
			d.AddTransition(diagram.Transition{From: "e", To: "g", Style: diagram.StyleDecay}),
			d.AddTransition(diagram.Transition{From: "g", To: "e", Label: "control"}),
			d.AddTransition(diagram.Transition{From: "e", To: "r", Style: diagram.StyleTwoWay}),
		)
		g, err := Build(d, Config{})
		if err != nil {
			t.Fatalf("Build() error = %v", err)
		}
		return g
	}

	a, b := build(), build()
	if !reflect.DeepEqual(a, b) {
		t.Error("identical input produced different geometry")
	}
}

func TestBuildRejectsDanglingReference(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "g", Energy: 0}),
		d.AddLevel(diagram.Level{ID: "e", Energy: 1}),
		d.AddTransition(diagram.Transition{From: "g", To: "e"}),
	)
	d.RemoveLevel("e")

	_, err := Build(d, Config{})
	if !errors.Is(err, diagram.ErrUnknownTargetLevel) {
		t.Fatalf("Build() error = %v, want ErrUnknownTargetLevel", err)
	}
	if !strings.Contains(err.Error(), "g→e") {
		t.Errorf("Build() error = %q, should name the dangling transition", err)
	}
}

func TestBuildCompleteOutput(t *testing.T) {
	// Every level and transition appears in the geometry.
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "a", Energy: 0, Group: "x"}),
		d.AddLevel(diagram.Level{ID: "b", Energy: 0.05, Group: "x"}),
		d.AddLevel(diagram.Level{ID: "c", Energy: 3, Group: "y"}),
		d.AddTransition(diagram.Transition{From: "a", To: "c"}),
		d.AddTransition(diagram.Transition{From: "b", To: "b"}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(g.Levels) != 3 {
		t.Errorf("got %d level segments, want 3", len(g.Levels))
	}
	if len(g.Transitions) != 2 {
		t.Errorf("got %d transition paths, want 2", len(g.Transitions))
	}
	for _, id := range []string{"a", "b", "c"} {
		if _, ok := g.Level(id); !ok {
			t.Errorf("level %q missing from geometry", id)
		}
	}
}

func TestLevelLabelCollisionRepair(t *testing.T) {
	// Two levels in the same slot with labels close enough to overlap:
	// repair must separate the boxes deterministically.
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "a", Energy: 0, Group: "m"}),
		d.AddLevel(diagram.Level{ID: "b", Energy: 0.15, Group: "m"}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	la, _ := g.Level("a")
	lb, _ := g.Level("b")
	if labelRect(la.Label).Intersects(labelRect(lb.Label)) {
		t.Errorf("labels still overlap after repair: %+v vs %+v", la.Label, lb.Label)
	}
	// Displacement heads away from the diagram center (left side → left).
	if lb.Label.Anchor.X >= la.Label.Anchor.X {
		t.Errorf("displaced label should move outward: a.x=%v b.x=%v",
			la.Label.Anchor.X, lb.Label.Anchor.X)
	}
}

func TestRepairExhaustionWarns(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "a", Energy: 0, Group: "m"}),
		d.AddLevel(diagram.Level{ID: "b", Energy: 0.15, Group: "m"}),
	)

	g, err := Build(d, Config{MaxRepairIterations: 1})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	var found bool
	for _, w := range g.Warnings {
		if w.Code == WarnLabelRepairExhausted {
			found = true
		}
	}
	if !found {
		t.Error("expected WarnLabelRepairExhausted with a one-iteration budget")
	}
	if len(g.Levels) != 2 {
		t.Error("degraded layout must still emit complete geometry")
	}
}

func TestTransitionLabelPlacement(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "g", Energy: 0}),
		d.AddLevel(diagram.Level{ID: "e", Energy: 1}),
		d.AddTransition(diagram.Transition{From: "g", To: "e", Label: "Ω"}),
	)

	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	lb := g.Transitions[0].Label
	if lb.Text != "Ω" {
		t.Fatalf("label text = %q", lb.Text)
	}
	mid := g.Transitions[0].Points.Midpoint()
	if lb.Anchor == mid {
		t.Error("transition label should be offset from the path midpoint")
	}
}

func TestGeometryRoundTrip(t *testing.T) {
	d := diagram.New()
	mustAdd(t,
		d.AddLevel(diagram.Level{ID: "g", Energy: 0}),
		d.AddLevel(diagram.Level{ID: "e", Energy: 1}),
		d.AddTransition(diagram.Transition{From: "g", To: "e", Label: "probe"}),
	)
	g, err := Build(d, Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	data, err := MarshalGeometry(g)
	if err != nil {
		t.Fatalf("MarshalGeometry() error = %v", err)
	}
	got, err := UnmarshalGeometry(data)
	if err != nil {
		t.Fatalf("UnmarshalGeometry() error = %v", err)
	}
	if !reflect.DeepEqual(g, got) {
		t.Error("geometry changed across JSON round trip")
	}
}

func segmentY(t *testing.T, g Geometry, id string) float64 {
	t.Helper()
	l, ok := g.Level(id)
	if !ok {
		t.Fatalf("level %q missing", id)
	}
	return l.Segment.Y()
}
