// Package deck renders extracted whiteboard text and the source photo into a
// PowerPoint (.pptx) presentation.
package deck

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"image/png"
	"strings"
	"time"
)

const (
	Title    = "Whiteboard Content"
	Subtitle = "Automatically Generated from Image"

	emuPerInch = 914400

	slideWidth  = 10 * emuPerInch
	slideHeight = 7.5 * emuPerInch

	imageLeft  = 1 * emuPerInch
	imageTop   = 1 * emuPerInch
	imageWidth = 6 * emuPerInch

	bodyFontSize  = 1800
	titleFontSize = 4400
)

// Paragraphs splits text on blank-line boundaries, trimming each block and
// dropping blocks that end up empty.
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Build produces the presentation: a title slide, a slide holding the source
// image, and one slide per paragraph of text.
func Build(text string, img image.Image) ([]byte, error) {
	var pic bytes.Buffer
	if err := png.Encode(&pic, img); err != nil {
		return nil, fmt.Errorf("encode slide image: %w", err)
	}

	slides := []string{
		titleSlide(),
		imageSlide(img.Bounds()),
	}
	for i, p := range Paragraphs(text) {
		slides = append(slides, contentSlide(fmt.Sprintf("Slide %d", i+1), p))
	}

	now := time.Now().UTC()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []part{
		{"[Content_Types].xml", []byte(contentTypes(len(slides)))},
		{"_rels/.rels", []byte(rootRels)},
		{"docProps/core.xml", []byte(coreProps(now))},
		{"docProps/app.xml", []byte(appProps(len(slides)))},
		{"ppt/presentation.xml", []byte(presentation(len(slides)))},
		{"ppt/_rels/presentation.xml.rels", []byte(presentationRels(len(slides)))},
		{"ppt/slideMasters/slideMaster1.xml", []byte(slideMaster)},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", []byte(slideMasterRels)},
		{"ppt/slideLayouts/slideLayout1.xml", []byte(slideLayout)},
		{"ppt/slideLayouts/_rels/slideLayout1.xml.rels", []byte(slideLayoutRels)},
		{"ppt/theme/theme1.xml", []byte(theme)},
		{"ppt/media/image1.png", pic.Bytes()},
	}
	for i, s := range slides {
		n := i + 1
		parts = append(parts,
			part{fmt.Sprintf("ppt/slides/slide%d.xml", n), []byte(s)},
			part{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", n), []byte(slideRels(n == 2))},
		)
	}

	for _, p := range parts {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: now,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", p.name, err)
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, fmt.Errorf("write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize pptx: %w", err)
	}
	return buf.Bytes(), nil
}

func contentTypes(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	b.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	b.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	b.WriteString(`<Default Extension="png" ContentType="image/png"/>`)
	b.WriteString(`<Override PartName="/ppt/presentation.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.presentation.main+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideMasters/slideMaster1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideMaster+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/slideLayouts/slideLayout1.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slideLayout+xml"/>`)
	b.WriteString(`<Override PartName="/ppt/theme/theme1.xml" ContentType="application/vnd.openxmlformats-officedocument.theme+xml"/>`)
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&b, `<Override PartName="/ppt/slides/slide%d.xml" ContentType="application/vnd.openxmlformats-officedocument.presentationml.slide+xml"/>`, i)
	}
	b.WriteString(`<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>`)
	b.WriteString(`<Override PartName="/docProps/app.xml" ContentType="application/vnd.openxmlformats-officedocument.extended-properties+xml"/>`)
	b.WriteString(`</Types>`)
	return b.String()
}

func coreProps(now time.Time) string {
	return xmlHeader +
		`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" ` +
		`xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" ` +
		`xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">` +
		`<dc:title>` + Title + `</dc:title><dc:creator>ink2deck</dc:creator>` +
		`<dcterms:created xsi:type="dcterms:W3CDTF">` + now.Format(time.RFC3339) + `</dcterms:created>` +
		`<dcterms:modified xsi:type="dcterms:W3CDTF">` + now.Format(time.RFC3339) + `</dcterms:modified>` +
		`</cp:coreProperties>`
}

func appProps(slides int) string {
	return xmlHeader +
		`<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">` +
		`<Application>ink2deck</Application>` +
		fmt.Sprintf(`<Slides>%d</Slides>`, slides) +
		`</Properties>`
}

// Relationship ids in presentation.xml.rels: rId1 master, rId2 theme, then
// one per slide starting at rId3.
func presentation(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:presentation xmlns:a="%s" xmlns:r="%s" xmlns:p="%s" saveSubsetFonts="1">`, nsA, nsR, nsP)
	b.WriteString(`<p:sldMasterIdLst><p:sldMasterId id="2147483648" r:id="rId1"/></p:sldMasterIdLst>`)
	b.WriteString(`<p:sldIdLst>`)
	for i := 0; i < slides; i++ {
		fmt.Fprintf(&b, `<p:sldId id="%d" r:id="rId%d"/>`, 256+i, 3+i)
	}
	b.WriteString(`</p:sldIdLst>`)
	fmt.Fprintf(&b, `<p:sldSz cx="%d" cy="%d" type="screen4x3"/>`, slideWidth, int(slideHeight))
	b.WriteString(`<p:notesSz cx="6858000" cy="9144000"/>`)
	b.WriteString(`</p:presentation>`)
	return b.String()
}

func presentationRels(slides int) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	fmt.Fprintf(&b, `<Relationship Id="rId1" Type="%s" Target="slideMasters/slideMaster1.xml"/>`, relSlideMaster)
	fmt.Fprintf(&b, `<Relationship Id="rId2" Type="%s" Target="theme/theme1.xml"/>`, relTheme)
	for i := 1; i <= slides; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="%s" Target="slides/slide%d.xml"/>`, i+2, relSlide, i)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

func slideRels(withImage bool) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	fmt.Fprintf(&b, `<Relationship Id="rId1" Type="%s" Target="../slideLayouts/slideLayout1.xml"/>`, relSlideLayout)
	if withImage {
		fmt.Fprintf(&b, `<Relationship Id="rId2" Type="%s" Target="../media/image1.png"/>`, relImage)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

type part struct {
	name string
	data []byte
}

type box struct {
	x, y, cx, cy int
}

func slide(shapes ...string) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	fmt.Fprintf(&b, `<p:sld xmlns:a="%s" xmlns:r="%s" xmlns:p="%s">`, nsA, nsR, nsP)
	b.WriteString(`<p:cSld><p:spTree>`)
	b.WriteString(emptyGroup)
	for _, s := range shapes {
		b.WriteString(s)
	}
	b.WriteString(`</p:spTree></p:cSld>`)
	b.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	b.WriteString(`</p:sld>`)
	return b.String()
}

func titleSlide() string {
	return slide(
		textBox(2, "Title 1", box{685800, 2130425, 7772400, 1470025}, "ctr", titleFontSize, Title),
		textBox(3, "Subtitle 2", box{1371600, 3886200, 6400800, 1752600}, "ctr", 2800, Subtitle),
	)
}

func imageSlide(bounds image.Rectangle) string {
	cy := imageWidth
	if w := bounds.Dx(); w > 0 {
		cy = int(int64(imageWidth) * int64(bounds.Dy()) / int64(w))
	}
	pic := fmt.Sprintf(`<p:pic><p:nvPicPr><p:cNvPr id="2" name="Picture 1"/>`+
		`<p:cNvPicPr><a:picLocks noChangeAspect="1"/></p:cNvPicPr><p:nvPr/></p:nvPicPr>`+
		`<p:blipFill><a:blip r:embed="rId2"/><a:stretch><a:fillRect/></a:stretch></p:blipFill>`+
		`<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></p:spPr></p:pic>`,
		imageLeft, imageTop, imageWidth, cy)
	return slide(pic)
}

func contentSlide(title, body string) string {
	return slide(
		textBox(2, "Title 1", box{457200, 274638, 8229600, 1143000}, "l", titleFontSize, title),
		textBox(3, "Content 2", box{457200, 1600200, 8229600, 4525963}, "l", bodyFontSize, body),
	)
}

// textBox writes each line of text as its own paragraph.
func textBox(id int, name string, at box, align string, size int, text string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<p:sp><p:nvSpPr><p:cNvPr id="%d" name="%s"/><p:cNvSpPr txBox="1"/><p:nvPr/></p:nvSpPr>`, id, name)
	fmt.Fprintf(&b, `<p:spPr><a:xfrm><a:off x="%d" y="%d"/><a:ext cx="%d" cy="%d"/></a:xfrm>`, at.x, at.y, at.cx, at.cy)
	b.WriteString(`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom><a:noFill/></p:spPr>`)
	b.WriteString(`<p:txBody><a:bodyPr wrap="square" rtlCol="0"/><a:lstStyle/>`)
	for _, line := range strings.Split(text, "\n") {
		fmt.Fprintf(&b, `<a:p><a:pPr algn="%s"/>`, align)
		if line == "" {
			fmt.Fprintf(&b, `<a:endParaRPr lang="en-US" sz="%d" dirty="0"/>`, size)
		} else {
			fmt.Fprintf(&b, `<a:r><a:rPr lang="en-US" sz="%d" dirty="0"/><a:t>%s</a:t></a:r>`, size, escape(line))
		}
		b.WriteString(`</a:p>`)
	}
	b.WriteString(`</p:txBody></p:sp>`)
	return b.String()
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
