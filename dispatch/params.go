package dispatch

// Params holds the route parameters bound during path matching.
// Iteration order is the declaration order of the parameters in the
// matched pattern. Values are always strings.
type Params struct {
	keys   []string
	values []string
}

func newParams() *Params {
	return &Params{}
}

// Get returns the value bound under name, or the empty string if the
// parameter is absent.
func (p *Params) Get(name string) string {
	v, _ := p.Lookup(name)
	return v
}

// Lookup returns the value bound under name and whether it exists.
// An optional parameter that matched zero segments does not exist.
func (p *Params) Lookup(name string) (string, bool) {
	if p == nil {
		return "", false
	}
	for i, k := range p.keys {
		if k == name {
			return p.values[i], true
		}
	}
	return "", false
}

// Keys returns the parameter names in declaration order.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Len returns the number of bound parameters.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Map returns the parameters as a plain map. The declaration order is
// lost; use Keys to recover it.
func (p *Params) Map() map[string]string {
	if p == nil {
		return nil
	}
	m := make(map[string]string, len(p.keys))
	for i, k := range p.keys {
		m[k] = p.values[i]
	}
	return m
}

// set binds a value under name. Duplicate names are rejected at pattern
// compile time, so set never overwrites.
func (p *Params) set(name, value string) {
	p.keys = append(p.keys, name)
	p.values = append(p.values, value)
}

// mark returns the current length for later rewinding during
// backtracking in the matcher.
func (p *Params) mark() int {
	return len(p.keys)
}

// rewind discards bindings made after the given mark.
func (p *Params) rewind(mark int) {
	p.keys = p.keys[:mark]
	p.values = p.values[:mark]
}
