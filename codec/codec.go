// Package codec selects the JSON implementation used for tile payloads and
// GeoJSON files.
//
// Every manifest records the codec name its tiles were written with. Both
// codecs produce standard JSON, so a tile written by one decodes with the
// other; the name is kept to reject manifests from writers using a format
// this build does not know.
package codec

// Codec turns values into bytes and back. Implementations must be safe for
// concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	// Name is the identifier stored in manifests.
	Name() string
}

// Default is the codec for newly partitioned datasets and written files.
var Default Codec = GoJSON{}

// ByName resolves a manifest codec name. An empty name maps to Default:
// legacy metadata files carry no codec.
func ByName(name string) (Codec, bool) {
	switch name {
	case "":
		return Default, true
	case JSON{}.Name():
		return JSON{}, true
	case GoJSON{}.Name():
		return GoJSON{}, true
	}
	return nil, false
}
