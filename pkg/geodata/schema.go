package geodata

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

const (
	schemaPackage    = "geodata"
	countryCodeField = 1
	entryField       = 1
)

// schema holds the subset of the v2ray geodata messages needed to read
// country codes. Domain and CIDR fields are left out so they decode as
// unknown fields and get discarded.
var schema = sync.OnceValues(func() (protoreflect.FileDescriptor, error) {
	fd := &descriptorpb.FileDescriptorProto{
		Name:    proto.String("geodata.proto"),
		Package: proto.String(schemaPackage),
		Syntax:  proto.String("proto3"),
		MessageType: []*descriptorpb.DescriptorProto{
			entryMessage("GeoSite"),
			listMessage("GeoSiteList", "GeoSite"),
			entryMessage("GeoIP"),
			listMessage("GeoIPList", "GeoIP"),
		},
	}
	return protodesc.NewFile(fd, new(protoregistry.Files))
})

func entryMessage(name string) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name: proto.String(name),
		Field: []*descriptorpb.FieldDescriptorProto{{
			Name:   proto.String("country_code"),
			Number: proto.Int32(countryCodeField),
			Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
			Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
		}},
	}
}

func listMessage(name, entry string) *descriptorpb.DescriptorProto {
	return &descriptorpb.DescriptorProto{
		Name: proto.String(name),
		Field: []*descriptorpb.FieldDescriptorProto{{
			Name:     proto.String("entry"),
			Number:   proto.Int32(entryField),
			Label:    descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
			Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
			TypeName: proto.String("." + schemaPackage + "." + entry),
		}},
	}
}

// listFields resolves the list message for kind together with its repeated
// entry field and the entry's country_code field.
func listFields(kind Kind) (protoreflect.MessageDescriptor, protoreflect.FieldDescriptor, protoreflect.FieldDescriptor, error) {
	file, err := schema()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build geodata schema: %w", err)
	}
	name, err := kind.listMessage()
	if err != nil {
		return nil, nil, nil, err
	}
	md := file.Messages().ByName(name)
	if md == nil {
		return nil, nil, nil, fmt.Errorf("message %s missing from schema", name)
	}
	entries := md.Fields().ByNumber(entryField)
	code := entries.Message().Fields().ByNumber(countryCodeField)
	return md, entries, code, nil
}
