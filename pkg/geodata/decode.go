package geodata

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ErrParseFailed is returned when data cannot be decoded as a list message.
var ErrParseFailed = errors.New("parse failed")

// DecodeStats summarises a decoded list. Empty counts entries whose code is
// the empty string.
type DecodeStats struct {
	Entries int
	Empty   int
}

// Decode extracts the lower-cased country codes from a GeoSiteList or
// GeoIPList encoded in data.
func Decode(kind Kind, data []byte) (TagSet, DecodeStats, error) {
	stats := DecodeStats{}
	md, entries, code, err := listFields(kind)
	if err != nil {
		return nil, stats, err
	}

	msg := dynamicpb.NewMessage(md)
	opts := proto.UnmarshalOptions{DiscardUnknown: true}
	if err := opts.Unmarshal(data, msg); err != nil {
		return nil, stats, fmt.Errorf("%w: decode %s: %w", ErrParseFailed, md.Name(), err)
	}

	tags := NewTagSet()
	list := msg.Get(entries).List()
	for i := 0; i < list.Len(); i++ {
		stats.Entries++
		value := list.Get(i).Message().Get(code).String()
		if value == "" {
			stats.Empty++
		}
		tags.AddCode(value)
	}
	return tags, stats, nil
}

// DecodeFile reads path from fs and decodes it with Decode.
func DecodeFile(fs afero.Fs, kind Kind, path string) (TagSet, DecodeStats, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, DecodeStats{}, fmt.Errorf("%w: read %s: %w", ErrParseFailed, path, err)
	}
	return Decode(kind, data)
}

// Encode builds a list message of the given kind with one entry per code.
// Codes are written verbatim so callers control casing.
func Encode(kind Kind, codes ...string) ([]byte, error) {
	md, entries, code, err := listFields(kind)
	if err != nil {
		return nil, err
	}

	msg := dynamicpb.NewMessage(md)
	list := msg.Mutable(entries).List()
	for _, c := range codes {
		entry := list.NewElement()
		entry.Message().Set(code, protoreflect.ValueOfString(c))
		list.Append(entry)
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(msg)
}
