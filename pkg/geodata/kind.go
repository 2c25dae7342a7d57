package geodata

import (
	"fmt"
	"strings"

	"google.golang.org/protobuf/reflect/protoreflect"
)

// Kind identifies which list message a data file holds.
type Kind string

const (
	KindSite Kind = "geosite"
	KindIP   Kind = "geoip"
)

// Kinds lists every supported kind in processing order.
var Kinds = []Kind{KindSite, KindIP}

// ParseKind converts a user supplied name into a Kind.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindSite:
		return KindSite, nil
	case KindIP:
		return KindIP, nil
	default:
		return "", fmt.Errorf("unknown geodata kind %q", raw)
	}
}

func (k Kind) String() string {
	return string(k)
}

func (k Kind) listMessage() (protoreflect.Name, error) {
	switch k {
	case KindSite:
		return "GeoSiteList", nil
	case KindIP:
		return "GeoIPList", nil
	default:
		return "", fmt.Errorf("unknown geodata kind %q", string(k))
	}
}
