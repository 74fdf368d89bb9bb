package protocol

import (
	"fmt"

	"github.com/danmuck/sib1ctl/internal/protocol/per"
	"github.com/danmuck/sib1ctl/internal/protocol/schema"
	"github.com/danmuck/sib1ctl/internal/rrc"
	"github.com/rs/zerolog/log"
)

// DefaultCapacity is the encode scratch buffer size in bytes.
const DefaultCapacity = 8192

type EncodeOptions struct {
	Schema   schema.Schema
	Capacity int
}

func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{Schema: schema.Default(), Capacity: DefaultCapacity}
}

type encoder struct {
	w   *per.BitWriter
	sch schema.Schema
}

// Encode packs msg with unaligned PER and returns the zero-padded bytes
// together with the exact number of significant bits.
func Encode(msg *rrc.Message, opts EncodeOptions) ([]byte, int, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if err := opts.Schema.Validate(); err != nil {
		return nil, 0, &EncodingError{Field: "schema", Err: fmt.Errorf("%w: %v", ErrInvalidSchema, err)}
	}
	if msg == nil {
		return nil, 0, &EncodingError{Field: "message", Err: ErrNilMessage}
	}

	e := &encoder{w: per.NewBitWriter(opts.Capacity), sch: opts.Schema}
	if err := e.message(msg); err != nil {
		log.Error().Err(err).Msg("protocol.Encode failed")
		return nil, 0, err
	}
	log.Debug().Int("bits", e.w.Len()).Int("capacity", opts.Capacity).Msg("protocol.Encode ok")
	return e.w.Bytes(), e.w.Len(), nil
}

func (e *encoder) fail(field string, err error) error {
	return &EncodingError{Field: field, Err: err}
}

func (e *encoder) message(m *rrc.Message) error {
	const path = "message"
	if m.Message.Choice != rrc.MessageTypeChoiceC1 || m.Message.C1 == nil {
		return e.fail(path, ErrUnsupportedAlternative)
	}
	if err := per.WriteChoiceIndex(e.w, e.sch.MessageType.Index, e.sch.MessageType.Alternatives); err != nil {
		return e.fail(path, err)
	}

	c1 := m.Message.C1
	if c1.Choice != rrc.C1ChoiceSystemInformationBlockType1 || c1.SystemInformationBlockType1 == nil {
		return e.fail(path+".c1", ErrUnsupportedAlternative)
	}
	if err := per.WriteChoiceIndex(e.w, e.sch.C1.Index, e.sch.C1.Alternatives); err != nil {
		return e.fail(path+".c1", err)
	}
	return e.sib1(path+".c1.systemInformationBlockType1", c1.SystemInformationBlockType1)
}

// presence writes the leading optional-field bitmap of a SEQUENCE.
func (e *encoder) presence(path string, present ...bool) error {
	for _, p := range present {
		if err := e.w.WriteBit(p); err != nil {
			return e.fail(path, err)
		}
	}
	return nil
}

func (e *encoder) sib1(path string, s *rrc.SIB1) error {
	if err := e.presence(path, s.CellSelectionInfo != nil); err != nil {
		return err
	}
	if s.CellSelectionInfo != nil {
		field := path + ".cellSelectionInfo.q-RxLevMin"
		r := e.sch.QRxLevMin
		if err := per.WriteConstrainedInt(e.w, s.CellSelectionInfo.QRxLevMin, r.Lower, r.Upper); err != nil {
			return e.fail(field, err)
		}
	}
	return e.cellAccessRelatedInfo(path+".cellAccessRelatedInfo", &s.CellAccessRelatedInfo)
}

func (e *encoder) cellAccessRelatedInfo(path string, c *rrc.CellAccessRelatedInfo) error {
	path += ".plmn-IdentityInfoList"
	if err := e.size(path, len(c.PLMNIdentityInfoList), e.sch.PLMNIdentityInfoList); err != nil {
		return err
	}
	for i := range c.PLMNIdentityInfoList {
		if err := e.plmnIdentityInfo(fmt.Sprintf("%s[%d]", path, i), &c.PLMNIdentityInfoList[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) plmnIdentityInfo(path string, info *rrc.PLMNIdentityInfo) error {
	path += ".plmn-IdentityList"
	if err := e.size(path, len(info.PLMNIdentityList), e.sch.PLMNIdentityList); err != nil {
		return err
	}
	for i := range info.PLMNIdentityList {
		if err := e.plmnIdentity(fmt.Sprintf("%s[%d]", path, i), &info.PLMNIdentityList[i]); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) plmnIdentity(path string, id *rrc.PLMNIdentity) error {
	if err := e.presence(path, id.MCC != nil); err != nil {
		return err
	}
	if id.MCC != nil {
		if err := e.digits(path+".mcc", id.MCC, e.sch.MCC); err != nil {
			return err
		}
	}
	return e.digits(path+".mnc", id.MNC, e.sch.MNC)
}

func (e *encoder) digits(path string, digits []rrc.Digit, size schema.SizeRange) error {
	if err := e.size(path, len(digits), size); err != nil {
		return err
	}
	for i, d := range digits {
		if err := per.WriteConstrainedInt(e.w, int64(d), e.sch.Digit.Lower, e.sch.Digit.Upper); err != nil {
			return e.fail(fmt.Sprintf("%s[%d]", path, i), err)
		}
	}
	return nil
}

func (e *encoder) size(path string, count int, r schema.SizeRange) error {
	if err := per.WriteSize(e.w, count, r.Lower, r.Upper); err != nil {
		return e.fail(path, err)
	}
	return nil
}
