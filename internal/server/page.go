package server

import (
	_ "embed"
	"html/template"

	"github.com/matzehuels/srcsetlab/pkg/imgparams"
	"github.com/matzehuels/srcsetlab/pkg/srcset"
)

//go:embed page.html.tmpl
var pageSource string

var pageTemplate = template.Must(template.New("page").Parse(pageSource))

type pageData struct {
	Source  string
	Params  imgparams.Params
	Query   template.URL
	Result  *srcset.Result // nil until a source has resolved
	Problem string         // set when the parameters are rejected

	Breakpoint imgparams.Range
	FocalPoint imgparams.Range
	Zoom       imgparams.Range
}
