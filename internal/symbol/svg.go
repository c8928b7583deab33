package symbol

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"mtp-placer/pkg/geometry"
)

// svgNode is a generic element so nested groups are walked without a schema.
type svgNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Nodes   []svgNode  `xml:",any"`
}

func (n *svgNode) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *svgNode) num(name string) float64 {
	return parseLength(n.attr(name))
}

// labelNameRe matches label anchor ids such as "Label#North".
var labelNameRe = regexp.MustCompile(`^(?i:label)#(\w+)$`)

// circleSegments is the polygon resolution used for circles and ellipses.
const circleSegments = 24

// ParseSVG reads a symbol sheet.
//
// Elements with id "Nozzle#<n>" give the nozzles (circle, ellipse or rect
// center), elements with id "Label#<Direction>" give label anchors and the
// root attribute data-placement selects the placement policy. Every other
// rect, circle, ellipse, line, polyline, polygon and path becomes outline.
// Element transforms are not supported.
func ParseSVG(r io.Reader, name string) (*Definition, error) {
	var root svgNode
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("cannot parse svg: %w", err)
	}
	if root.XMLName.Local != "svg" {
		return nil, fmt.Errorf("%w: root element is <%s>, want <svg>", ErrInvalidSymbol, root.XMLName.Local)
	}

	def := &Definition{
		Name:    name,
		Size:    svgSize(&root),
		Anchors: make(map[Direction]geometry.Point2D),
	}
	if id := root.attr("id"); id != "" {
		def.Name = id
	}
	if pl := root.attr("data-placement"); pl != "" {
		p, ok := ParsePlacement(pl)
		if !ok {
			return nil, fmt.Errorf("%w: unknown placement %q", ErrInvalidSymbol, pl)
		}
		def.Placement = p
	}

	named := make(map[string]geometry.Point2D)
	var walk func(n *svgNode)
	walk = func(n *svgNode) {
		for i := range n.Nodes {
			child := &n.Nodes[i]
			id := child.attr("id")

			if _, ok := NozzleNumber(id); ok {
				if c, ok := elementCenter(child); ok {
					named[id] = c
				}
				continue
			}
			if m := labelNameRe.FindStringSubmatch(id); m != nil {
				if dir, ok := ParseDirection(m[1]); ok {
					if c, ok := elementCenter(child); ok {
						def.Anchors[dir] = c
					}
				}
				continue
			}
			for _, path := range elementPaths(child) {
				if len(path) >= 2 {
					def.Outline = append(def.Outline, path)
				}
			}
			walk(child)
		}
	}
	walk(&root)

	nozzles, err := IndexNozzles(named)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", def.Name, err)
	}
	def.Nozzles = nozzles
	if len(def.Anchors) == 0 {
		def.Anchors = nil
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// svgSize takes width/height, falling back to the viewBox extent.
func svgSize(root *svgNode) geometry.Size {
	w, h := root.num("width"), root.num("height")
	if w > 0 && h > 0 {
		return geometry.NewSize(w, h)
	}
	vb := parseNumbers(root.attr("viewBox"))
	if len(vb) == 4 {
		return geometry.NewSize(vb[2], vb[3])
	}
	return geometry.Size{}
}

// elementCenter returns the anchor point an element marks.
func elementCenter(n *svgNode) (geometry.Point2D, bool) {
	switch n.XMLName.Local {
	case "circle", "ellipse":
		return geometry.Point2D{X: n.num("cx"), Y: n.num("cy")}, true
	case "rect":
		return geometry.NewRect(n.num("x"), n.num("y"), n.num("width"), n.num("height")).Center(), true
	case "text", "use":
		return geometry.Point2D{X: n.num("x"), Y: n.num("y")}, true
	}
	return geometry.Point2D{}, false
}

// elementPaths converts a drawable element to polylines.
func elementPaths(n *svgNode) [][]geometry.Point2D {
	switch n.XMLName.Local {
	case "rect":
		corners := geometry.NewRect(n.num("x"), n.num("y"), n.num("width"), n.num("height")).Corners()
		return [][]geometry.Point2D{append(corners, corners[0])}
	case "circle":
		r := n.num("r")
		if r <= 0 {
			return nil
		}
		pts := geometry.GenerateCirclePoints(n.num("cx"), n.num("cy"), r, circleSegments)
		return [][]geometry.Point2D{append(pts, pts[0])}
	case "ellipse":
		rx, ry := n.num("rx"), n.num("ry")
		if rx <= 0 || ry <= 0 {
			return nil
		}
		cx, cy := n.num("cx"), n.num("cy")
		pts := geometry.GenerateCirclePoints(0, 0, 1, circleSegments)
		for i := range pts {
			pts[i] = geometry.Point2D{X: cx + pts[i].X*rx, Y: cy + pts[i].Y*ry}
		}
		return [][]geometry.Point2D{append(pts, pts[0])}
	case "line":
		return [][]geometry.Point2D{{
			{X: n.num("x1"), Y: n.num("y1")},
			{X: n.num("x2"), Y: n.num("y2")},
		}}
	case "polyline", "polygon":
		nums := parseNumbers(n.attr("points"))
		pts := make([]geometry.Point2D, 0, len(nums)/2)
		for i := 0; i+1 < len(nums); i += 2 {
			pts = append(pts, geometry.Point2D{X: nums[i], Y: nums[i+1]})
		}
		if n.XMLName.Local == "polygon" && len(pts) > 0 {
			pts = append(pts, pts[0])
		}
		return [][]geometry.Point2D{pts}
	case "path":
		return ParsePath(n.attr("d"))
	}
	return nil
}

// pathCmdRe splits path data into commands and their arguments. The letter
// set leaves out e and E, which belong to exponents.
var pathCmdRe = regexp.MustCompile(`([MmLlHhVvZzCcSsQqTtAa])([^MmLlHhVvZzCcSsQqTtAa]*)`)

// curveArgs is the argument count of one curve or arc segment. Only the end
// point, the last pair, is kept.
var curveArgs = map[string]int{"C": 6, "S": 4, "Q": 4, "T": 2, "A": 7}

// ParsePath flattens SVG path data into one polyline per subpath. M, L, H, V
// and Z are exact; curves and arcs are replaced by a straight segment to their
// end point.
func ParsePath(d string) [][]geometry.Point2D {
	var (
		paths      [][]geometry.Point2D
		sub        []geometry.Point2D
		cur, start geometry.Point2D
	)
	flush := func() {
		if len(sub) >= 2 {
			paths = append(paths, sub)
		}
		sub = nil
	}
	lineTo := func(p geometry.Point2D) {
		if len(sub) == 0 {
			sub = append(sub, cur)
		}
		sub = append(sub, p)
		cur = p
	}

	for _, m := range pathCmdRe.FindAllStringSubmatch(d, -1) {
		cmd := strings.ToUpper(m[1])
		args := parseNumbers(m[2])
		rel := m[1] != cmd
		at := func(x, y float64) geometry.Point2D {
			p := geometry.Point2D{X: x, Y: y}
			if rel {
				p = cur.Add(p)
			}
			return p
		}

		switch cmd {
		case "M":
			for i := 0; i+1 < len(args); i += 2 {
				p := at(args[i], args[i+1])
				if i == 0 {
					flush()
					cur, start = p, p
					continue
				}
				lineTo(p)
			}
		case "L":
			for i := 0; i+1 < len(args); i += 2 {
				lineTo(at(args[i], args[i+1]))
			}
		case "H":
			for _, x := range args {
				if rel {
					x += cur.X
				}
				lineTo(geometry.Point2D{X: x, Y: cur.Y})
			}
		case "V":
			for _, y := range args {
				if rel {
					y += cur.Y
				}
				lineTo(geometry.Point2D{X: cur.X, Y: y})
			}
		case "Z":
			if len(sub) > 0 {
				lineTo(start)
			}
			flush()
			cur = start
		default:
			n := curveArgs[cmd]
			for i := 0; n > 0 && i+n <= len(args); i += n {
				lineTo(at(args[i+n-2], args[i+n-1]))
			}
		}
	}
	flush()

	return paths
}

// numberRe matches one SVG number. Separators are optional when a sign or a
// second decimal point starts the next number, as in "10-5" or ".5.5".
var numberRe = regexp.MustCompile(`[-+]?(?:\d+\.?\d*|\.\d+)(?:[eE][-+]?\d+)?`)

// parseNumbers reads an SVG number list.
func parseNumbers(s string) []float64 {
	tokens := numberRe.FindAllString(s, -1)
	nums := make([]float64, 0, len(tokens))
	for _, tok := range tokens {
		if v, err := strconv.ParseFloat(tok, 64); err == nil {
			nums = append(nums, v)
		}
	}
	return nums
}

// parseLength reads a number with an optional unit suffix such as "px".
func parseLength(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
