package material

import (
	"slices"

	"github.com/Carmen-Shannon/oxy-rendergraph/engine/device"
)

type paramEntry struct {
	name  UniformName
	value device.UniformValue
}

// MaterialParams is an ordered list of uniform values keyed by UniformName.
// Entries are kept sorted by name so two param lists with the same contents
// apply in the same order.
type MaterialParams struct {
	entries []paramEntry
}

// Set stores v for name, replacing an existing value.
func (p *MaterialParams) Set(name UniformName, v device.UniformValue) {
	i, found := slices.BinarySearchFunc(p.entries, name, func(e paramEntry, n UniformName) int {
		return int(e.name) - int(n)
	})
	if found {
		p.entries[i].value = v
		return
	}
	p.entries = slices.Insert(p.entries, i, paramEntry{name: name, value: v})
}

// Get returns the value stored for name.
func (p *MaterialParams) Get(name UniformName) (device.UniformValue, bool) {
	i, found := slices.BinarySearchFunc(p.entries, name, func(e paramEntry, n UniformName) int {
		return int(e.name) - int(n)
	})
	if !found {
		return device.UniformValue{}, false
	}
	return p.entries[i].value, true
}

// Len returns the number of stored values.
func (p *MaterialParams) Len() int {
	return len(p.entries)
}

// Names returns the stored uniform names in order.
func (p *MaterialParams) Names() []UniformName {
	out := make([]UniformName, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.name
	}
	return out
}

// Clone returns an independent copy.
func (p *MaterialParams) Clone() MaterialParams {
	return MaterialParams{entries: slices.Clone(p.entries)}
}

// Apply writes every stored value the bound program of mt declares.
//
// Parameters:
//   - dev: the device with mt's program bound
//   - mt: the material type whose uniform locations are used
func (p *MaterialParams) Apply(dev device.Device, mt MaterialType) {
	for _, e := range p.entries {
		if loc := mt.UniformLocation(e.name); loc >= 0 {
			dev.SetUniform(loc, e.value)
		}
	}
}
