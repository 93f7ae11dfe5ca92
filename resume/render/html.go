package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"resume-builder/resume/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pages = template.Must(template.New("pages").ParseFS(templateFS, "templates/*.tmpl"))

// wordSettings opens Word in print layout. html/template drops comments from template
// text, so the conditional block is passed in as a value.
const wordSettings = template.HTML(`<!--[if gte mso 9]><xml><w:WordDocument><w:View>Print</w:View><w:Zoom>100</w:Zoom><w:DoNotOptimizeForBrowser/></w:WordDocument></xml><![endif]-->`)

// Assets carries resolved media for a render. Image is usually a data: URI built from
// the stored profile image.
type Assets struct {
	Image template.URL
}

type pageData struct {
	View         View
	Title        string
	Image        template.URL
	CSS          template.CSS
	WordSettings template.HTML
}

// PrintHTML renders the print surface: a standalone A4 page.
func PrintHTML(doc model.ResumeDocument, sel Selection, lang Language, assets Assets) ([]byte, error) {
	return execute("print", doc, sel, lang, assets, printStyle)
}

// WordHTML renders the word-processor surface: HTML that Word opens as a document.
func WordHTML(doc model.ResumeDocument, sel Selection, lang Language, assets Assets) ([]byte, error) {
	return execute("word", doc, sel, lang, assets, wordStyle)
}

func execute(name string, doc model.ResumeDocument, sel Selection, lang Language, assets Assets, style surfaceStyle) ([]byte, error) {
	view := NewView(BuildLayout(doc, sel), lang)
	data := pageData{
		View:  view,
		Title: view.HeaderSection().Header.Name,
		Image: assets.Image,
		CSS:   stylesheet(view, style, name == "word"),
	}
	if name == "word" {
		data.WordSettings = wordSettings
	}
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// stylesheet builds the page CSS. Colors come from ResolveColor and are always hex.
func stylesheet(v View, s surfaceStyle, word bool) template.CSS {
	var b strings.Builder
	if word {
		fmt.Fprintf(&b, "@page WordSection1{size:21cm 29.7cm;margin:%s;}div.WordSection1{page:WordSection1;}", s.PageMargin)
	} else {
		fmt.Fprintf(&b, "@page{size:A4;margin:%s;}", s.PageMargin)
	}
	fmt.Fprintf(&b, "body{font-family:%s;font-size:%s;color:#1f2937;margin:0;}", s.FontFamily, s.BaseSize)
	fmt.Fprintf(&b, ".header{border-bottom:2px solid %s;padding-bottom:8px;margin-bottom:12px;}", v.HeaderColor)
	fmt.Fprintf(&b, ".name{font-size:%s;color:%s;margin:0;}", s.NameSize, v.HeaderColor)
	b.WriteString(".age,.contacts{margin:2px 0;color:#4b5563;}")
	b.WriteString(".photo{float:right;width:90px;height:90px;object-fit:cover;border-radius:4px;}")
	fmt.Fprintf(&b, ".section-title{font-size:%s;color:%s;text-transform:uppercase;margin:12px 0 4px;border-bottom:1px solid %s;}", s.TitleSize, v.AccentColor, v.AccentColor)
	b.WriteString(".entry{margin-bottom:6px;}.entry-title{font-weight:bold;}")
	b.WriteString(".entry-org,.entry-location,.entry-gpa{margin-left:6px;}.entry-dates{float:right;color:#6b7280;}")
	b.WriteString(".items,.bullets{margin:2px 0 0 18px;padding:0;}")
	if v.Creative() && !word {
		b.WriteString(".grid{display:grid;grid-template-columns:3fr 2fr;column-gap:18px;}")
	}
	if v.Template == Corporate {
		b.WriteString(".section-title{letter-spacing:0.05em;}")
	}
	return template.CSS(b.String())
}
