// Package pdftest builds small, uncompressed PDF documents with image
// XObjects for tests.
package pdftest

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"slices"
	"strings"
)

type Image struct {
	Name          string
	Width, Height int // zero omits the entry
	Data          []byte

	Subtype          string // defaults to Image
	ColorSpace       string // defaults to /DeviceRGB
	BitsPerComponent int    // defaults to 8
	Filter           string // e.g. FlateDecode
	Extra            string // written verbatim into the stream dictionary
}

type Page struct {
	Images []Image

	// NoResources drops the Resources entry entirely.
	NoResources bool
}

type Options struct {
	// ReverseObjects writes objects to the file body in reverse object
	// number order, so file order differs from page tree order.
	ReverseObjects bool
}

func Build(pages ...Page) []byte {
	return BuildWith(Options{}, pages...)
}

func BuildWith(opts Options, pages ...Page) []byte {
	objs := []string{"", ""}
	add := func(body string) int {
		objs = append(objs, body)
		return len(objs)
	}

	kids := make([]string, 0, len(pages))
	for _, p := range pages {
		pageNr := add("")

		var xobjs []string
		for _, img := range p.Images {
			n := add(imageObject(img))
			xobjs = append(xobjs, fmt.Sprintf("/%s %d 0 R", img.Name, n))
		}

		var res string
		switch {
		case p.NoResources:
		case len(xobjs) == 0:
			res = " /Resources << /ProcSet [/PDF] >>"
		default:
			res = fmt.Sprintf(" /Resources << /ProcSet [/PDF /ImageC] /XObject << %s >> >>", strings.Join(xobjs, " "))
		}

		objs[pageNr-1] = fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792]%s >>", res)
		kids = append(kids, fmt.Sprintf("%d 0 R", pageNr))
	}
	objs[0] = "<< /Type /Catalog /Pages 2 0 R >>"
	objs[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))

	order := make([]int, len(objs))
	for i := range order {
		order[i] = i + 1
	}
	if opts.ReverseObjects {
		slices.Reverse(order)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")

	offsets := make([]int, len(objs))
	for _, n := range order {
		offsets[n-1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, objs[n-1])
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)

	return buf.Bytes()
}

func imageObject(img Image) string {
	subtype := img.Subtype
	if subtype == "" {
		subtype = "Image"
	}
	cs := img.ColorSpace
	if cs == "" {
		cs = "/DeviceRGB"
	}
	bpc := img.BitsPerComponent
	if bpc == 0 {
		bpc = 8
	}

	var d strings.Builder
	fmt.Fprintf(&d, "<< /Type /XObject /Subtype /%s", subtype)
	if img.Width > 0 {
		fmt.Fprintf(&d, " /Width %d", img.Width)
	}
	if img.Height > 0 {
		fmt.Fprintf(&d, " /Height %d", img.Height)
	}
	if subtype == "Image" {
		fmt.Fprintf(&d, " /ColorSpace %s /BitsPerComponent %d", cs, bpc)
	} else {
		d.WriteString(" /BBox [0 0 10 10]")
	}
	if img.Filter != "" {
		fmt.Fprintf(&d, " /Filter /%s", img.Filter)
	}
	if img.Extra != "" {
		d.WriteString(" " + img.Extra)
	}
	fmt.Fprintf(&d, " /Length %d >>\nstream\n%s\nendstream", len(img.Data), img.Data)

	return d.String()
}

// Solid returns width x height RGB samples of a single color.
func Solid(width, height int, r, g, b byte) []byte {
	out := make([]byte, 0, width*height*3)
	for range width * height {
		out = append(out, r, g, b)
	}
	return out
}

// Gradient returns RGB samples whose pixels all differ, for pixel-exact
// comparisons.
func Gradient(width, height int) []byte {
	out := make([]byte, 0, width*height*3)
	for y := range height {
		for x := range width {
			out = append(out, byte(x*16), byte(y*16), byte(x+y))
		}
	}
	return out
}

func Flate(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

// RGBImage is a convenience for a DeviceRGB image of the given samples.
func RGBImage(name string, width, height int, data []byte) Image {
	return Image{Name: name, Width: width, Height: height, Data: data}
}
