package coltype

var registry map[string]*Type

func init() {
	registry = make(map[string]*Type, len(builtins))
	for _, t := range builtins {
		registry[t.Name] = t
	}
}

// Lookup resolves a type name as it appears in a KRDA table header column
// (int8, int16, int32, uint8, uint16, uint32, float32, string, date,
// bytes) to its immutable Type descriptor.
func Lookup(name string) (*Type, bool) {
	t, ok := registry[name]
	return t, ok
}
