package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.uber.org/zap"
)

// headerWindow is how far into the buffer the %PDF- marker may appear.
const headerWindow = 1024

var (
	errNotImage      = errors.New("xobject is not an image")
	errMissingHeader = errors.New("missing %PDF- header")
	errMissingRoot   = errors.New("missing document catalog")
)

func init() {
	// pdfcpu would otherwise create a config dir under the user's home.
	api.DisableConfigDir()
}

// PdfcpuExtractor walks page resource dictionaries with pdfcpu and decodes
// every image XObject as raw 8-bit RGB samples.
type PdfcpuExtractor struct {
	log *zap.Logger
}

var _ ImageExtractor = (*PdfcpuExtractor)(nil)

func NewPdfcpuExtractor(log *zap.Logger) *PdfcpuExtractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &PdfcpuExtractor{log: log}
}

func (e *PdfcpuExtractor) Extract(data []byte) (*Result, error) {
	ctx, err := readContext(data)
	if err != nil {
		e.log.Warn("pdf rejected", zap.Int("bytes", len(data)), zap.Error(err))
		return nil, &MalformedInputError{Err: err}
	}

	res := &Result{}
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		xobjs, err := pageXObjects(ctx, pageNr)
		if err != nil {
			// The page stays in the count but contributes nothing.
			e.log.Warn("page resources unreadable", zap.Int("page", pageNr), zap.Error(err))
			continue
		}

		for _, name := range resourceNames(xobjs) {
			img, err := decodeXObject(ctx, xobjs[name])
			if errors.Is(err, errNotImage) {
				continue
			}
			if err != nil {
				e.log.Warn("skipping image",
					zap.Int("page", pageNr),
					zap.String("name", name),
					zap.Error(err),
				)
				res.Warnings = append(res.Warnings, Warning{Page: pageNr, Name: name, Err: err})
				continue
			}
			res.Images = append(res.Images, Image{RGB: img, Page: pageNr, Name: name})
		}
	}

	sum := res.Summary()
	e.log.Info("extracted images from pdf",
		zap.Int("pages", ctx.PageCount),
		zap.Int("extracted", sum.Extracted),
		zap.Int("skipped", sum.Skipped),
	)

	return res, nil
}

func readContext(data []byte) (ctx *model.Context, err error) {
	if !bytes.Contains(data[:min(len(data), headerWindow)], []byte("%PDF-")) {
		return nil, errMissingHeader
	}

	// pdfcpu panics on some damaged cross-reference sections.
	defer func() {
		if r := recover(); r != nil {
			ctx, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err = api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, err
	}
	if ctx.Root == nil {
		return nil, errMissingRoot
	}
	if err := ctx.EnsurePageCount(); err != nil {
		return nil, err
	}

	return ctx, nil
}

// pageXObjects returns the XObject section of a page's resources, falling
// back to resources inherited from the page tree. A nil dict means the page
// has no XObjects.
func pageXObjects(ctx *model.Context, pageNr int) (types.Dict, error) {
	pageDict, _, inh, err := ctx.PageDict(pageNr, false)
	if err != nil {
		return nil, err
	}
	if pageDict == nil {
		return nil, nil
	}

	var resObj types.Object
	if o, found := pageDict.Find("Resources"); found && o != nil {
		resObj = o
	} else if inh != nil && inh.Resources != nil {
		resObj = inh.Resources
	}
	if resObj == nil {
		return nil, nil
	}

	res, err := ctx.DereferenceDict(resObj)
	if err != nil || res == nil {
		return nil, err
	}

	o, found := res.Find("XObject")
	if !found || o == nil {
		return nil, nil
	}

	return ctx.DereferenceDict(o)
}

func decodeXObject(ctx *model.Context, o types.Object) (img *RGB, err error) {
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("%w: %v", ErrImageDecode, r)
		}
	}()

	sd, _, err := ctx.DereferenceStreamDict(o)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	if sd == nil {
		return nil, fmt.Errorf("%w: not a stream", ErrImageDecode)
	}

	subtype := sd.Subtype()
	if subtype == nil {
		return nil, fmt.Errorf("%w: missing Subtype", ErrImageDecode)
	}
	if *subtype != "Image" {
		return nil, errNotImage
	}

	width, ok := intEntry(ctx, sd.Dict, "Width")
	if !ok {
		return nil, fmt.Errorf("%w: missing Width", ErrImageDecode)
	}
	height, ok := intEntry(ctx, sd.Dict, "Height")
	if !ok {
		return nil, fmt.Errorf("%w: missing Height", ErrImageDecode)
	}

	if err := checkColorModel(ctx, sd); err != nil {
		return nil, err
	}

	if err := sd.Decode(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	return NewRGB(width, height, sd.Content)
}

// imageCodecs produce compressed images rather than raw samples.
var imageCodecs = map[string]bool{
	"DCTDecode":      true,
	"JPXDecode":      true,
	"JBIG2Decode":    true,
	"CCITTFaxDecode": true,
}

// checkColorModel accepts DeviceRGB, CalRGB, three-component ICCBased and an
// absent ColorSpace at 8 bits per component.
func checkColorModel(ctx *model.Context, sd *types.StreamDict) error {
	for _, f := range sd.FilterPipeline {
		if imageCodecs[f.Name] {
			return fmt.Errorf("%w: %s stream", ErrUnsupportedColorModel, f.Name)
		}
	}

	if o, found := sd.Find("ImageMask"); found {
		if b, ok := o.(types.Boolean); ok && bool(b) {
			return fmt.Errorf("%w: image mask", ErrUnsupportedColorModel)
		}
	}

	if bpc, ok := intEntry(ctx, sd.Dict, "BitsPerComponent"); ok && bpc != 8 {
		return fmt.Errorf("%w: %d bits per component", ErrUnsupportedColorModel, bpc)
	}

	o, found := sd.Find("ColorSpace")
	if !found || o == nil {
		return nil
	}
	cs, err := ctx.Dereference(o)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	switch v := cs.(type) {
	case types.Name:
		switch v {
		case "DeviceRGB", "CalRGB":
			return nil
		}
		return fmt.Errorf("%w: %s", ErrUnsupportedColorModel, v)

	case types.Array:
		if len(v) == 0 {
			return fmt.Errorf("%w: empty ColorSpace array", ErrImageDecode)
		}
		family, _ := v[0].(types.Name)
		switch family {
		case "CalRGB":
			return nil
		case "ICCBased":
			if len(v) > 1 {
				if icc, _, err := ctx.DereferenceStreamDict(v[1]); err == nil && icc != nil {
					if n, ok := intEntry(ctx, icc.Dict, "N"); ok && n == 3 {
						return nil
					}
				}
			}
			return fmt.Errorf("%w: ICCBased profile without 3 components", ErrUnsupportedColorModel)
		}
		return fmt.Errorf("%w: %s", ErrUnsupportedColorModel, family)
	}

	return fmt.Errorf("%w: ColorSpace %T", ErrUnsupportedColorModel, cs)
}

func intEntry(ctx *model.Context, d types.Dict, key string) (int, bool) {
	o, found := d.Find(key)
	if !found || o == nil {
		return 0, false
	}
	o, err := ctx.Dereference(o)
	if err != nil {
		return 0, false
	}

	switch v := o.(type) {
	case types.Integer:
		return int(v), true
	case types.Float:
		if n := int(v); float64(n) == float64(v) {
			return n, true
		}
	}
	return 0, false
}

// resourceNames orders dictionary keys naturally so Im2 sorts before Im10.
// pdfcpu keeps dictionaries in maps, so file order is not available.
func resourceNames(d types.Dict) []string {
	return slices.SortedFunc(maps.Keys(d), naturalCompare)
}

func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ca, cb := a[0], b[0]
		if isDigit(ca) && isDigit(cb) {
			na, ra := splitDigits(a)
			nb, rb := splitDigits(b)
			if c := compareNumeric(na, nb); c != 0 {
				return c
			}
			a, b = ra, rb
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		a, b = a[1:], b[1:]
	}
	return len(a) - len(b)
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func splitDigits(s string) (digits, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

// compareNumeric compares decimal digit runs of any length.
func compareNumeric(a, b string) int {
	trim := func(s string) string {
		for len(s) > 1 && s[0] == '0' {
			s = s[1:]
		}
		return s
	}
	ta, tb := trim(a), trim(b)
	if len(ta) != len(tb) {
		return len(ta) - len(tb)
	}
	if ta < tb {
		return -1
	}
	if ta > tb {
		return 1
	}
	return len(a) - len(b)
}
