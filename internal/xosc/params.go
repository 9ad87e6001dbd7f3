package xosc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// parameter is one resolved declaration in document order.
type parameter struct {
	name  string
	value string
}

// expandParameters replaces $name placeholders with the values of
// ParameterDeclaration elements found outside the Storyboard. Storyboard
// declarations are runtime state of the scenario and stay untouched.
//
// Replacement is a single pass in declaration order; parameters that
// reference other parameters are not re-expanded.
func expandParameters(data []byte) ([]byte, error) {
	params, err := scanParameters(data)
	if err != nil {
		return nil, err
	}
	if len(params) == 0 {
		return data, nil
	}

	content := string(data)
	for _, p := range params {
		content = strings.ReplaceAll(content, "$"+p.name, p.value)
	}
	return []byte(content), nil
}

// scanParameters streams the document once and collects every
// ParameterDeclaration not enclosed by a Storyboard element.
func scanParameters(data []byte) ([]parameter, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var params []parameter
	storyboardDepth := 0
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("scan parameter declarations: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "Storyboard":
				storyboardDepth++
			case "ParameterDeclaration":
				if storyboardDepth > 0 {
					continue
				}
				var name, value string
				for _, attr := range t.Attr {
					switch attr.Name.Local {
					case "name":
						name = attr.Value
					case "value":
						value = attr.Value
					}
				}
				if name != "" {
					params = append(params, parameter{name: name, value: value})
				}
			}
		case xml.EndElement:
			if t.Name.Local == "Storyboard" {
				storyboardDepth--
			}
		}
	}
	return params, nil
}
