package devicedef

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

type xmlDevice struct {
	XMLName  xml.Name     `xml:"device"`
	Name     string       `xml:"name,attr"`
	Packages []xmlPackage `xml:"package"`
}

type xmlPackage struct {
	ID   string   `xml:"id,attr"`
	Pins []xmlPin `xml:"pin"`
}

// xmlPin names its function with either "name" or "function".
type xmlPin struct {
	Name     string `xml:"name,attr"`
	Function string `xml:"function,attr"`
	Loc      string `xml:"loc,attr"`
	Mode     string `xml:"mode,attr"`
}

// ReadXML decodes one device document:
//
//	<device name="attiny13">
//	  <package id="DIP-8">
//	    <pin name="VCC" loc="8" mode="all"/>
//	    <pin name="PB0" loc="5"/>
//	  </package>
//	</device>
//
// Pins without a mode bind as "any".
func ReadXML(r io.Reader) (*Definition, error) {
	var doc xmlDevice
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("devicedef: decode xml: %w", err)
	}
	if len(doc.Packages) == 0 {
		return nil, fmt.Errorf("devicedef: device %s declares no package", doc.Name)
	}

	def := &Definition{Name: doc.Name}
	for _, p := range doc.Packages {
		if len(p.Pins) == 0 {
			return nil, fmt.Errorf("devicedef: %s/%s declares no pin", doc.Name, p.ID)
		}
		pd := PackageDefinition{ID: p.ID}
		for _, pin := range p.Pins {
			fn := pin.Function
			if fn == "" {
				fn = pin.Name
			}
			mode, err := ParseBindMode(pin.Mode)
			if err != nil {
				return nil, fmt.Errorf("devicedef: %s/%s: %s: %w", doc.Name, p.ID, fn, err)
			}
			pd.Pins = append(pd.Pins, PinDefinition{
				Function:  fn,
				Locations: SplitLocations(pin.Loc),
				Mode:      mode,
			})
		}
		def.Packages = append(def.Packages, pd)
	}
	return def, nil
}

// ReadXMLFile decodes the device document stored at path.
func ReadXMLFile(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("devicedef: %w", err)
	}
	defer f.Close()

	def, err := ReadXML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}
