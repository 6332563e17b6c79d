package render

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/dihm/leveldiagram/pkg/diagram"
	"github.com/dihm/leveldiagram/pkg/layout"
)

func testGeometry(t *testing.T) (*diagram.Diagram, layout.Geometry) {
	t.Helper()
	d := diagram.New()
	steps := []error{
		d.AddLevel(diagram.Level{ID: "g", Energy: 0, Label: "|g⟩"}),
		d.AddLevel(diagram.Level{ID: "e", Energy: 1}),
		d.AddTransition(diagram.Transition{From: "g", To: "e", Label: "Ω", Style: diagram.StyleTwoWay}),
		d.AddTransition(diagram.Transition{From: "e", To: "g", Style: diagram.StyleDecay}),
	}
	for _, err := range steps {
		if err != nil {
			t.Fatalf("building diagram: %v", err)
		}
	}
	g, err := layout.Build(d, layout.Config{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return d, g
}

func TestRenderSVG(t *testing.T) {
	_, g := testGeometry(t)
	svg := string(RenderSVG(g))

	if !strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("missing svg root element")
	}
	if !strings.HasSuffix(svg, "</svg>\n") {
		t.Error("missing closing tag")
	}
	for _, want := range []string{
		`id="level-g"`,
		`id="level-e"`,
		`class="transition two-way"`,
		`class="transition decay"`,
		`class="arrowhead"`,
		`>Ω</text>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG missing %s", want)
		}
	}
}

func TestRenderSVGFlipsVertical(t *testing.T) {
	_, g := testGeometry(t)
	svg := string(RenderSVG(g))

	// The higher-energy level must appear with the smaller screen y.
	gY := extractLineY(t, svg, "level-g")
	eY := extractLineY(t, svg, "level-e")
	if eY >= gY {
		t.Errorf("higher-energy level should be higher on screen: e.y=%v g.y=%v", eY, gY)
	}
}

func TestRenderSVGOptions(t *testing.T) {
	_, g := testGeometry(t)
	svg := string(RenderSVG(g, WithBackground("white"), WithLevelColor("#336699")))

	if !strings.Contains(svg, `fill="white"`) {
		t.Error("background option not applied")
	}
	if !strings.Contains(svg, `stroke="#336699"`) {
		t.Error("level color option not applied")
	}
}

func TestRenderSVGEscapesLabels(t *testing.T) {
	d := diagram.New()
	if err := d.AddLevel(diagram.Level{ID: "a", Energy: 0, Label: "<b>&"}); err != nil {
		t.Fatal(err)
	}
	g, err := layout.Build(d, layout.Config{})
	if err != nil {
		t.Fatal(err)
	}
	svg := string(RenderSVG(g))
	if strings.Contains(svg, "<b>&") {
		t.Error("label text not escaped")
	}
	if !strings.Contains(svg, "&lt;b&gt;&amp;") {
		t.Error("expected escaped label text")
	}
}

func TestToDOT(t *testing.T) {
	d, _ := testGeometry(t)
	dot := ToDOT(d, DOTOptions{})

	for _, want := range []string{
		"digraph G {",
		`"g" -> "e" [dir=both, label="Ω"];`,
		`"e" -> "g" [style=dashed];`,
		`"e" [label="|e⟩"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q in:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailed(t *testing.T) {
	d := diagram.New()
	if err := d.AddLevel(diagram.Level{ID: "r", Energy: 2.5, Group: "rydberg"}); err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(d, DOTOptions{Detailed: true})

	if !strings.Contains(dot, "energy: 2.5") {
		t.Errorf("detailed label missing energy in:\n%s", dot)
	}
	if !strings.Contains(dot, "group: rydberg") {
		t.Errorf("detailed label missing group in:\n%s", dot)
	}
}

func TestRenderDOTSVG(t *testing.T) {
	d, _ := testGeometry(t)
	dot := ToDOT(d, DOTOptions{})

	svg, err := RenderDOTSVG(context.Background(), dot)
	if err != nil {
		t.Fatalf("RenderDOTSVG() error = %v", err)
	}
	out := string(svg)
	if !strings.Contains(out, "<svg") {
		t.Error("output is not SVG")
	}
	if !strings.Contains(out, "g") || !strings.Contains(out, "e") {
		t.Error("SVG missing level nodes")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="8.5in" height="11in" viewBox="0.00 0.00 612.00 792.00" xmlns="http://www.w3.org/2000/svg">ok</svg>`)
	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 612.00 792.00"`) {
		t.Errorf("viewBox not normalized: %s", out)
	}
	if !strings.Contains(out, `width="612" height="792"`) {
		t.Errorf("pixel dimensions not set: %s", out)
	}
}

// extractLineY pulls the y1 attribute from the line with the given id.
func extractLineY(t *testing.T, svg, id string) float64 {
	t.Helper()
	idx := strings.Index(svg, `id="`+id+`"`)
	if idx < 0 {
		t.Fatalf("element %s not found", id)
	}
	rest := svg[idx:]
	start := strings.Index(rest, `y1="`)
	if start < 0 {
		t.Fatalf("y1 missing for %s", id)
	}
	rest = rest[start+4:]
	end := strings.Index(rest, `"`)
	y, err := strconv.ParseFloat(rest[:end], 64)
	if err != nil {
		t.Fatalf("parsing y1 for %s: %v", id, err)
	}
	return y
}
