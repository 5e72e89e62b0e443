package bridge

import (
	"fmt"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/symmetry/pkg/l0/frame"
	"github.com/robotalks/symmetry/pkg/l0/link"
)

// Record is a frame carried over MQTT. It is encoded in protobuf wire
// format:
//
//	message Record {
//	  uint32 feature = 1;
//	  bytes  payload = 2;
//	  uint32 status  = 3;
//	}
//
// A non-zero status makes it a status frame; feature and payload are ignored.
type Record struct {
	Feature byte
	Payload []byte
	Status  frame.Status
}

const (
	wireVarint = 0
	wireBytes  = 2

	fieldFeature = 1
	fieldPayload = 2
	fieldStatus  = 3
)

// RecordFromMessage copies a received message.
func RecordFromMessage(m *frame.Message) Record {
	return Record{
		Feature: m.Feature(),
		Payload: append([]byte(nil), m.Payload()...),
	}
}

// Marshal encodes the record.
func (r *Record) Marshal() []byte {
	buf := proto.NewBuffer(nil)
	if r.Status != 0 {
		buf.EncodeVarint(fieldStatus<<3 | wireVarint)
		buf.EncodeVarint(uint64(r.Status))
		return buf.Bytes()
	}
	buf.EncodeVarint(fieldFeature<<3 | wireVarint)
	buf.EncodeVarint(uint64(r.Feature))
	if len(r.Payload) > 0 {
		buf.EncodeVarint(fieldPayload<<3 | wireBytes)
		buf.EncodeRawBytes(r.Payload)
	}
	return buf.Bytes()
}

// Unmarshal decodes data into the record. Unknown varint and bytes fields
// are skipped.
func (r *Record) Unmarshal(data []byte) error {
	*r = Record{}
	buf := proto.NewBuffer(data)
	for remain := len(data); remain > 0; {
		tag, err := buf.DecodeVarint()
		if err != nil {
			return err
		}
		remain -= proto.SizeVarint(tag)
		switch tag & 7 {
		case wireVarint:
			val, err := buf.DecodeVarint()
			if err != nil {
				return err
			}
			remain -= proto.SizeVarint(val)
			switch tag >> 3 {
			case fieldFeature:
				if val > 0xff {
					return fmt.Errorf("feature out of range: %d", val)
				}
				r.Feature = byte(val)
			case fieldStatus:
				if val > 0xff || !frame.Status(val).IsValid() {
					return fmt.Errorf("invalid status: %d", val)
				}
				r.Status = frame.Status(val)
			}
		case wireBytes:
			raw, err := buf.DecodeRawBytes(true)
			if err != nil {
				return err
			}
			remain -= proto.SizeVarint(uint64(len(raw))) + len(raw)
			if tag>>3 == fieldPayload {
				r.Payload = raw
			}
		default:
			return fmt.Errorf("unsupported wire type %d", tag&7)
		}
	}
	return nil
}

// SendTo sends the record as a frame on l. It must run on the polling
// goroutine.
func (r *Record) SendTo(l *link.Link) error {
	if r.Status != 0 {
		return l.SendStatus(r.Status)
	}
	if len(r.Payload) > frame.Capacity {
		return frame.ErrBufferOverflow
	}
	out := l.Outgoing()
	out.Purge()
	if err := out.SetPayload(r.Payload); err != nil {
		return err
	}
	out.SetFeature(r.Feature)
	return l.SendMessage()
}
