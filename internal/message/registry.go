package message

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// typeAliasField is the discriminator key in every wire object.
const typeAliasField = "TypeAlias"

// Factory returns a new zero value of a payload variant.
type Factory func() Payload

// Registry maps type aliases to payload factories. It is safe for
// concurrent use; registration normally happens once at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a new registry holding every wire payload type.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, f := range []Factory{
		func() Payload { return &Telemetry{} },
		func() Payload { return &MultipurposeTelemetry{} },
		func() Payload { return &Power{} },
		func() Payload { return &DispatchBoolean{} },
		func() Payload { return &DispatchBooleanLocal{} },
		func() Payload { return &BooleanActuatorCmd{} },
		func() Payload { return &CliAtnCmd{} },
		func() Payload { return &ContractHandoff{} },
		func() Payload { return &Status{} },
		func() Payload { return &Snapshot{} },
	} {
		// Aliases above are distinct, so Register cannot fail.
		_ = r.Register(f().TypeAlias(), f)
	}
	return r
}

// Register adds a factory for alias.
func (r *Registry) Register(alias string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[alias]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, alias)
	}
	r.factories[alias] = f
	return nil
}

// Has reports whether alias is registered.
func (r *Registry) Has(alias string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[alias]
	return ok
}

// Aliases returns the registered aliases in sorted order.
func (r *Registry) Aliases() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for a := range r.factories {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Encode serialises p as a JSON object with sorted keys and the
// TypeAlias discriminator. The same payload always yields the same bytes.
func (r *Registry) Encode(p Payload) ([]byte, error) {
	alias := p.TypeAlias()
	if !r.Has(alias) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, alias)
	}

	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", alias, err)
	}
	fields, err := decodeObject(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", alias, err)
	}
	fields[typeAliasField] = alias

	// encoding/json writes map keys in sorted order.
	return json.Marshal(fields)
}

// Decode parses data as the payload registered under alias. If the object
// carries a TypeAlias field it must equal alias.
func (r *Registry) Decode(alias string, data []byte) (Payload, error) {
	r.mu.RLock()
	f, ok := r.factories[alias]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, alias)
	}

	fields, err := decodeObject(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, alias, err)
	}
	if embedded, ok := fields[typeAliasField]; ok {
		if s, _ := embedded.(string); s != alias {
			return nil, fmt.Errorf("%w: topic says %s, payload says %v", ErrTypeMismatch, alias, embedded)
		}
	}

	p := f()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedPayload, alias, err)
	}
	return p, nil
}

// decodeObject unmarshals a JSON object keeping numbers exact.
func decodeObject(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("not a JSON object")
	}
	return fields, nil
}
