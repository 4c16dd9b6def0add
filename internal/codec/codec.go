package codec

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nerrad567/gray-logic-scada/internal/message"
)

// Separator splits the sender alias from the type alias in a topic.
const Separator = "/"

// Decoded is the result of a successful decode.
type Decoded struct {
	// Source is the sender alias taken from the topic.
	Source string

	// TypeAlias is the type alias taken from the topic.
	TypeAlias string

	Payload message.Payload
}

// Codec encodes and decodes payloads for one transport.
type Codec interface {
	Decode(topic string, payload []byte) (Decoded, error)
	Encode(p message.Payload) ([]byte, error)
}

// SourcePolicy decides which sender aliases a transport accepts.
type SourcePolicy interface {
	Allowed(alias string) bool
}

// AliasSet is satisfied by anything that can answer alias membership,
// such as the house layout.
type AliasSet interface {
	Has(alias string) bool
}

// Exact accepts exactly one alias.
type Exact string

// Allowed implements SourcePolicy.
func (e Exact) Allowed(alias string) bool { return alias == string(e) }

// Known accepts any alias present in the set.
type Known struct {
	Set AliasSet
}

// Allowed implements SourcePolicy.
func (k Known) Allowed(alias string) bool { return k.Set != nil && k.Set.Has(alias) }

// Topic builds the topic a payload from src is published on.
func Topic(src, typeAlias string) string {
	return src + Separator + typeAlias
}

// ParseTopic splits a topic into sender and type aliases.
func ParseTopic(topic string) (src, typeAlias string, err error) {
	src, typeAlias, ok := strings.Cut(topic, Separator)
	if !ok || src == "" || typeAlias == "" || strings.Contains(typeAlias, Separator) {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}
	return src, typeAlias, nil
}

// TypeCodec is a Codec backed by a message.Registry and a SourcePolicy.
type TypeCodec struct {
	registry *message.Registry
	policy   SourcePolicy
}

// New returns a codec that accepts senders allowed by policy.
func New(registry *message.Registry, policy SourcePolicy) *TypeCodec {
	return &TypeCodec{registry: registry, policy: policy}
}

// NewGridworks returns the codec for the cloud broker: only the Atn may send.
func NewGridworks(registry *message.Registry, atnAlias string) *TypeCodec {
	return New(registry, Exact(atnAlias))
}

// NewLocal returns the codec for the in-house broker: any layout node may send.
func NewLocal(registry *message.Registry, nodes AliasSet) *TypeCodec {
	return New(registry, Known{Set: nodes})
}

// Decode implements Codec.
func (c *TypeCodec) Decode(topic string, payload []byte) (Decoded, error) {
	src, typeAlias, err := ParseTopic(topic)
	if err != nil {
		return Decoded{}, err
	}
	if !c.registry.Has(typeAlias) {
		return Decoded{}, fmt.Errorf("%w: %s", ErrUnknownType, typeAlias)
	}
	if !c.policy.Allowed(src) {
		return Decoded{}, fmt.Errorf("%w: %s", ErrUnauthorizedSource, src)
	}

	p, err := c.registry.Decode(typeAlias, payload)
	if err != nil {
		if errors.Is(err, message.ErrUnknownType) {
			return Decoded{}, fmt.Errorf("%w: %w", ErrUnknownType, err)
		}
		return Decoded{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return Decoded{Source: src, TypeAlias: typeAlias, Payload: p}, nil
}

// Encode implements Codec.
func (c *TypeCodec) Encode(p message.Payload) ([]byte, error) {
	return c.registry.Encode(p)
}
