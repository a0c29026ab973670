// Package android extracts application metadata from AndroidManifest.xml.
package android

import (
	"bytes"
	"fmt"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// Manifest holds the attributes the upload commands need from an Android
// manifest.
type Manifest struct {
	Package     string
	VersionName string
	VersionCode string
}

var manifestQuery = xpath.MustCompile("//manifest")

// ParseManifest reads the root manifest element of an AndroidManifest.xml
// document. The package attribute is required; the android:versionName and
// android:versionCode attributes are optional (newer Gradle builds move them
// out of the manifest).
func ParseManifest(data []byte) (*Manifest, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing AndroidManifest.xml: %w", err)
	}

	node := xmlquery.QuerySelector(doc, manifestQuery)
	if node == nil {
		return nil, fmt.Errorf("AndroidManifest.xml has no <manifest> element")
	}

	manifest := &Manifest{}

	for _, attr := range node.Attr {
		switch attr.Name.Local {
		case "package":
			manifest.Package = attr.Value
		case "versionName":
			manifest.VersionName = attr.Value
		case "versionCode":
			manifest.VersionCode = attr.Value
		}
	}

	if manifest.Package == "" {
		return nil, fmt.Errorf("AndroidManifest.xml has no package attribute")
	}

	return manifest, nil
}
