package source

import (
	formtree "github.com/formtree/formtree"
	drvgojson "github.com/formtree/formtree/source/gojson"
)

// init in a separate package to avoid import cycle in root. Importing this
// package sets go-json as the default driver (when built with the gojson tag).
func init() { formtree.SetJSONDriver(drvgojson.Driver()) }
