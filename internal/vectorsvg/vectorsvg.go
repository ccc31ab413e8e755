// Package vectorsvg parses the subset of SVG that floor-plan exports
// actually use — lines, rects, polylines/polygons, and the straight-segment
// commands of path data — into wall Lines. Curves, arcs, and transforms are
// explicitly out of scope. Curve/arc path commands and the transform of a
// top-level <g> are reported back to the caller as a limitation string;
// transforms on other elements are ignored without a report.
package vectorsvg

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/arxfloor/roomdetect/internal/apperror"
	"github.com/arxfloor/roomdetect/internal/geometry"
)

// svgDoc mirrors only the elements this parser understands; xml.Unmarshal
// ignores everything else, which is how transforms on individual elements
// and <g> groups nested more than one level deep end up silently
// unsupported rather than erroring.
type svgDoc struct {
	XMLName   xml.Name    `xml:"svg"`
	Lines     []svgLine   `xml:"line"`
	Rects     []svgRect   `xml:"rect"`
	Polylines []svgPoly   `xml:"polyline"`
	Polygons  []svgPoly   `xml:"polygon"`
	Paths     []svgPath   `xml:"path"`
	Groups    []svgGroup  `xml:"g"`
}

// svgGroup recurses one level so elements nested in a top-level <g> are
// still picked up. A transform on the group is not applied to their
// coordinates; Parse reports it as a limitation.
type svgGroup struct {
	Lines     []svgLine `xml:"line"`
	Rects     []svgRect `xml:"rect"`
	Polylines []svgPoly `xml:"polyline"`
	Polygons  []svgPoly `xml:"polygon"`
	Paths     []svgPath `xml:"path"`
	Transform string    `xml:"transform,attr"`
}

type svgLine struct {
	X1 float64 `xml:"x1,attr"`
	Y1 float64 `xml:"y1,attr"`
	X2 float64 `xml:"x2,attr"`
	Y2 float64 `xml:"y2,attr"`
}

type svgRect struct {
	X      float64 `xml:"x,attr"`
	Y      float64 `xml:"y,attr"`
	Width  float64 `xml:"width,attr"`
	Height float64 `xml:"height,attr"`
}

type svgPoly struct {
	Points string `xml:"points,attr"`
}

type svgPath struct {
	D string `xml:"d,attr"`
}

// ParseResult carries the extracted wall lines plus a human-readable note
// on any unsupported constructs encountered.
type ParseResult struct {
	Lines       []geometry.Line
	Limitation  string
}

// Parse decodes SVG bytes into wall Lines.
func Parse(data []byte) (*ParseResult, error) {
	var doc svgDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, apperror.Wrap(err, apperror.MalformedSVG, "parse SVG document")
	}

	var lines []geometry.Line
	var limitations []string

	collect := func(ls []svgLine, rs []svgRect, plys []svgPoly, paths []svgPath, transform string) {
		if transform != "" {
			limitations = append(limitations, "transform attribute ignored: "+transform)
		}
		for _, l := range ls {
			lines = append(lines, geometry.Line{
				Start: geometry.Point{X: l.X1, Y: l.Y1},
				End:   geometry.Point{X: l.X2, Y: l.Y2},
			})
		}
		for _, r := range rs {
			lines = append(lines, rectLines(r)...)
		}
		for _, p := range plys {
			pts, err := parsePoints(p.Points)
			if err != nil {
				limitations = append(limitations, err.Error())
				continue
			}
			lines = append(lines, polylineLines(pts, false)...)
		}
		for _, pa := range paths {
			pts, closed, lim, err := parsePathData(pa.D)
			if err != nil {
				limitations = append(limitations, err.Error())
				continue
			}
			if lim != "" {
				limitations = append(limitations, lim)
			}
			lines = append(lines, polylineLines(pts, closed)...)
		}
	}

	collect(doc.Lines, doc.Rects, append(doc.Polylines, doc.Polygons...), doc.Paths, "")
	for _, g := range doc.Groups {
		collect(g.Lines, g.Rects, append(g.Polylines, g.Polygons...), g.Paths, g.Transform)
	}

	result := &ParseResult{Lines: lines}
	if len(limitations) > 0 {
		result.Limitation = strings.Join(dedupeStrings(limitations), "; ")
	}
	return result, nil
}

func rectLines(r svgRect) []geometry.Line {
	x0, y0, x1, y1 := r.X, r.Y, r.X+r.Width, r.Y+r.Height
	return []geometry.Line{
		{Start: geometry.Point{X: x0, Y: y0}, End: geometry.Point{X: x1, Y: y0}},
		{Start: geometry.Point{X: x1, Y: y0}, End: geometry.Point{X: x1, Y: y1}},
		{Start: geometry.Point{X: x1, Y: y1}, End: geometry.Point{X: x0, Y: y1}},
		{Start: geometry.Point{X: x0, Y: y1}, End: geometry.Point{X: x0, Y: y0}},
	}
}

func polylineLines(pts []geometry.Point, closed bool) []geometry.Line {
	var out []geometry.Line
	for i := 0; i+1 < len(pts); i++ {
		out = append(out, geometry.Line{Start: pts[i], End: pts[i+1]})
	}
	if closed && len(pts) >= 2 {
		out = append(out, geometry.Line{Start: pts[len(pts)-1], End: pts[0]})
	}
	return out
}

func parsePoints(raw string) ([]geometry.Point, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	})
	if len(fields)%2 != 0 {
		return nil, apperror.New(apperror.MalformedSVG, "polyline points attribute has odd coordinate count")
	}
	pts := make([]geometry.Point, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.MalformedSVG, "parse polyline point")
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.MalformedSVG, "parse polyline point")
		}
		pts = append(pts, geometry.Point{X: x, Y: y})
	}
	return pts, nil
}

// parsePathData decomposes the straight-segment subset of SVG path data:
// M/m (moveto), L/l (lineto), H/h (horizontal), V/v (vertical), Z/z
// (closepath). Any curve or arc command (C, S, Q, T, A, in either case)
// stops decomposition at that point and is reported as a limitation rather
// than approximated.
func parsePathData(d string) ([]geometry.Point, bool, string, error) {
	toks := tokenizePath(d)
	var pts []geometry.Point
	var cur geometry.Point
	closed := false
	limitation := ""

	i := 0
	for i < len(toks) {
		cmd := toks[i]
		i++
		switch cmd {
		case "M", "m":
			x, y, adv, err := readPair(toks, i)
			if err != nil {
				return nil, false, "", err
			}
			i += adv
			if cmd == "m" && len(pts) > 0 {
				x, y = cur.X+x, cur.Y+y
			}
			cur = geometry.Point{X: x, Y: y}
			pts = append(pts, cur)
		case "L", "l":
			x, y, adv, err := readPair(toks, i)
			if err != nil {
				return nil, false, "", err
			}
			i += adv
			if cmd == "l" {
				x, y = cur.X+x, cur.Y+y
			}
			cur = geometry.Point{X: x, Y: y}
			pts = append(pts, cur)
		case "H", "h":
			x, adv, err := readScalar(toks, i)
			if err != nil {
				return nil, false, "", err
			}
			i += adv
			if cmd == "h" {
				x = cur.X + x
			}
			cur = geometry.Point{X: x, Y: cur.Y}
			pts = append(pts, cur)
		case "V", "v":
			y, adv, err := readScalar(toks, i)
			if err != nil {
				return nil, false, "", err
			}
			i += adv
			if cmd == "v" {
				y = cur.Y + y
			}
			cur = geometry.Point{X: cur.X, Y: y}
			pts = append(pts, cur)
		case "Z", "z":
			closed = true
		default:
			limitation = fmt.Sprintf("path command %q unsupported (curves/arcs not decomposed)", cmd)
			i = len(toks)
		}
	}

	return pts, closed, limitation, nil
}

func tokenizePath(d string) []string {
	var toks []string
	var num strings.Builder
	flush := func() {
		if num.Len() > 0 {
			toks = append(toks, num.String())
			num.Reset()
		}
	}
	for _, r := range d {
		switch {
		case strings.ContainsRune("MmLlHhVvZzCcSsQqTtAa", r):
			flush()
			toks = append(toks, string(r))
		case r == ',' || r == ' ' || r == '\n' || r == '\t':
			flush()
		case r == '-' && num.Len() > 0 && !strings.HasSuffix(num.String(), "e") && !strings.HasSuffix(num.String(), "E"):
			flush()
			num.WriteRune(r)
		default:
			num.WriteRune(r)
		}
	}
	flush()
	return toks
}

func readPair(toks []string, i int) (float64, float64, int, error) {
	if i+1 >= len(toks) {
		return 0, 0, 0, apperror.New(apperror.MalformedSVG, "path data truncated before coordinate pair")
	}
	x, err := strconv.ParseFloat(toks[i], 64)
	if err != nil {
		return 0, 0, 0, apperror.Wrap(err, apperror.MalformedSVG, "parse path coordinate")
	}
	y, err := strconv.ParseFloat(toks[i+1], 64)
	if err != nil {
		return 0, 0, 0, apperror.Wrap(err, apperror.MalformedSVG, "parse path coordinate")
	}
	return x, y, 2, nil
}

func readScalar(toks []string, i int) (float64, int, error) {
	if i >= len(toks) {
		return 0, 0, apperror.New(apperror.MalformedSVG, "path data truncated before coordinate")
	}
	v, err := strconv.ParseFloat(toks[i], 64)
	if err != nil {
		return 0, 0, apperror.Wrap(err, apperror.MalformedSVG, "parse path coordinate")
	}
	return v, 1, nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
