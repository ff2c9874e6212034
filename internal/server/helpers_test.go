package server_test

import "github.com/matzehuels/meteomap/pkg/document"

func editorIcon() document.Body {
	return document.DefaultBody(document.KindIcon, "sun")
}
