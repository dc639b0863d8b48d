package salesforce

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// Descriptor is what a SoapClient needs from an API descriptor (the enterprise or partner WSDL):
// the namespace of the login call and the default service address.
type Descriptor struct {
	TargetNamespace string
	Location        string
}

type wsdlDefinitions struct {
	XMLName         xml.Name
	TargetNamespace string `xml:"targetNamespace,attr"`
	Services        []struct {
		Ports []struct {
			Address struct {
				Location string `xml:"location,attr"`
			} `xml:"address"`
		} `xml:"port"`
	} `xml:"service"`
}

// LoadDescriptor reads and parses the WSDL at path
func LoadDescriptor(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open salesforce wsdl: %w", err)
	}
	defer f.Close()
	return ParseDescriptor(f)
}

func ParseDescriptor(r io.Reader) (*Descriptor, error) {
	var defs wsdlDefinitions
	if err := xml.NewDecoder(r).Decode(&defs); err != nil {
		return nil, fmt.Errorf("unable to parse salesforce wsdl: %w", err)
	}
	if defs.XMLName.Local != "definitions" {
		return nil, fmt.Errorf("unexpected wsdl root element %q", defs.XMLName.Local)
	}
	if len(defs.TargetNamespace) == 0 {
		return nil, fmt.Errorf("wsdl has no targetNamespace")
	}

	d := &Descriptor{TargetNamespace: defs.TargetNamespace}
	for _, s := range defs.Services {
		for _, p := range s.Ports {
			if len(p.Address.Location) > 0 {
				d.Location = p.Address.Location
				return d, nil
			}
		}
	}
	return d, nil
}
