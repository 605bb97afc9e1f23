package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"path"
	"text/template"
	"time"
)

// book is everything needed to write the container.
type book struct {
	ID       string
	Title    string
	Author   string
	Desc     string
	Language string
	Modified string
	Chapters []*chapter
}

// Flat returns every chapter in reading order.
func (b *book) Flat() []*chapter {
	var out []*chapter
	for _, c := range b.Chapters {
		out = append(out, c)
		out = append(out, c.Children...)
	}
	return out
}

// write emits the EPUB zip. The mimetype entry comes first and is stored uncompressed.
func (b *book) write(w io.Writer, modified time.Time) error {
	zw := zip.NewWriter(w)

	mimetype, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store, Modified: modified})
	if err != nil {
		return err
	}
	if _, err := io.WriteString(mimetype, "application/epub+zip"); err != nil {
		return err
	}

	files := []struct {
		name string
		tmpl *template.Template
		data interface{}
	}{
		{"META-INF/container.xml", containerTemplate, b},
		{path.Join(contentDir, "content.opf"), opfTemplate, b},
		{path.Join(contentDir, "toc.ncx"), ncxTemplate, b},
		{path.Join(contentDir, "nav.xhtml"), navTemplate, b},
		{path.Join(contentDir, "style.css"), styleTemplate, nil},
	}
	for _, c := range b.Flat() {
		files = append(files, struct {
			name string
			tmpl *template.Template
			data interface{}
		}{path.Join(contentDir, c.File), pageTemplate, map[string]interface{}{"Chapter": c, "Language": b.Language}})
	}

	for _, f := range files {
		var buf bytes.Buffer
		if err := f.tmpl.Execute(&buf, f.data); err != nil {
			return err
		}
		out, err := zw.CreateHeader(&zip.FileHeader{Name: f.name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			return err
		}
		if _, err := out.Write(buf.Bytes()); err != nil {
			return err
		}
	}

	return zw.Close()
}

var containerTemplate = template.Must(template.New("container").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`))

var opfTemplate = template.Must(template.New("opf").Funcs(funcs).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="book-id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:identifier id="book-id">{{esc .ID}}</dc:identifier>
    <dc:title>{{esc .Title}}</dc:title>
    <dc:language>{{.Language}}</dc:language>
{{- if .Author}}
    <dc:creator>{{esc .Author}}</dc:creator>
{{- end}}
{{- if .Desc}}
    <dc:description>{{esc .Desc}}</dc:description>
{{- end}}
    <meta property="dcterms:modified">{{.Modified}}</meta>
  </metadata>
  <manifest>
    <item id="nav" href="nav.xhtml" media-type="application/xhtml+xml" properties="nav"/>
    <item id="ncx" href="toc.ncx" media-type="application/x-dtbncx+xml"/>
    <item id="style" href="style.css" media-type="text/css"/>
{{- range $i, $c := .Flat}}
    <item id="c{{$i}}" href="{{$c.File}}" media-type="application/xhtml+xml"/>
{{- end}}
  </manifest>
  <spine toc="ncx">
{{- range $i, $c := .Flat}}
    <itemref idref="c{{$i}}"/>
{{- end}}
  </spine>
</package>
`))

var ncxTemplate = template.Must(template.New("ncx").Funcs(funcs).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head>
    <meta name="dtb:uid" content="{{esc .ID}}"/>
  </head>
  <docTitle><text>{{esc .Title}}</text></docTitle>
  <navMap>
{{- range $i, $c := .Chapters}}
    <navPoint id="n{{$i}}">
      <navLabel><text>{{esc $c.Title}}</text></navLabel>
      <content src="{{$c.File}}"/>
{{- range $j, $child := $c.Children}}
      <navPoint id="n{{$i}}-{{$j}}">
        <navLabel><text>{{esc $child.Title}}</text></navLabel>
        <content src="{{$child.File}}"/>
      </navPoint>
{{- end}}
    </navPoint>
{{- end}}
  </navMap>
</ncx>
`))

var navTemplate = template.Must(template.New("nav").Funcs(funcs).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops" lang="{{.Language}}">
<head><title>{{esc .Title}}</title></head>
<body>
<nav epub:type="toc" id="toc">
<ol>
{{- range .Chapters}}
<li><a href="{{.File}}">{{esc .Title}}</a>
{{- if .Children}}
<ol>
{{- range .Children}}
<li><a href="{{.File}}">{{esc .Title}}</a></li>
{{- end}}
</ol>
{{- end}}
</li>
{{- end}}
</ol>
</nav>
</body>
</html>
`))

var pageTemplate = template.Must(template.New("page").Funcs(funcs).Parse(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" lang="{{.Language}}">
<head>
<title>{{esc .Chapter.Title}}</title>
<link rel="stylesheet" type="text/css" href="style.css"/>
</head>
<body>
{{.Chapter.Body}}
</body>
</html>
`))

var styleTemplate = template.Must(template.New("style").Parse(`body { font-family: serif; margin: 2em; line-height: 1.6; }
h1 { color: #333; border-bottom: 2px solid #333; }
h2 { color: #555; margin-top: 2em; }
h3, h4, h5, h6 { color: #666; margin-top: 1.5em; }
.pub-date { color: #666; font-style: italic; margin-bottom: 1em; }
.content { margin-bottom: 2em; }
.link { margin-top: 1em; }
hr { margin: 2em 0; border: 1px solid #ccc; }
blockquote { margin: 1em 2em; padding-left: 1em; border-left: 3px solid #ccc; font-style: italic; }
ul, ol { margin: 1em 0; padding-left: 2em; }
code { background-color: #f4f4f4; padding: 0.2em 0.4em; font-family: monospace; }
pre { background-color: #f4f4f4; padding: 1em; overflow-x: auto; font-family: monospace; }
img { max-width: 100%; height: auto; margin: 1em 0; }
.toc ul { list-style-type: none; padding-left: 0; }
.toc .feed-section { font-weight: bold; margin-top: 1em; }
.toc .article-item { margin-left: 2em; font-weight: normal; }
.comments-section { margin-top: 3em; border-top: 2px solid #ccc; padding-top: 2em; }
.comment { margin: 1.5em 0; padding: 1em; background-color: #f9f9f9; border-left: 3px solid #0066cc; }
.comment-author { font-weight: bold; color: #333; margin-bottom: 0.5em; }
.comment-score { color: #666; font-size: 0.9em; margin-left: 1em; }
.comment-date { color: #666; font-size: 0.9em; }
`))
