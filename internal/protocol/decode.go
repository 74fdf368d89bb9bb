package protocol

import (
	"fmt"

	"github.com/danmuck/sib1ctl/internal/protocol/per"
	"github.com/danmuck/sib1ctl/internal/protocol/schema"
	"github.com/danmuck/sib1ctl/internal/rrc"
)

type decoder struct {
	r   *per.BitReader
	sch schema.Schema
}

// Decode reverses Encode under the same schema. At most seven bits of
// padding may follow the message.
func Decode(b []byte, sch schema.Schema) (*rrc.Message, error) {
	if err := sch.Validate(); err != nil {
		return nil, &DecodingError{Field: "schema", Err: fmt.Errorf("%w: %v", ErrInvalidSchema, err)}
	}
	d := &decoder{r: per.NewBitReader(b), sch: sch}
	msg, err := d.message()
	if err != nil {
		return nil, err
	}
	if d.r.Remaining() >= 8 {
		return nil, &DecodingError{Field: "message", Err: ErrTrailingData}
	}
	return msg, nil
}

func (d *decoder) fail(field string, err error) error {
	return &DecodingError{Field: field, Err: err}
}

func (d *decoder) message() (*rrc.Message, error) {
	const path = "message"
	idx, err := per.ReadChoiceIndex(d.r, d.sch.MessageType.Alternatives)
	if err != nil {
		return nil, d.fail(path, err)
	}
	if idx != d.sch.MessageType.Index {
		return nil, d.fail(path, ErrUnsupportedAlternative)
	}
	idx, err = per.ReadChoiceIndex(d.r, d.sch.C1.Alternatives)
	if err != nil {
		return nil, d.fail(path+".c1", err)
	}
	if idx != d.sch.C1.Index {
		return nil, d.fail(path+".c1", ErrUnsupportedAlternative)
	}
	sib1, err := d.sib1(path + ".c1.systemInformationBlockType1")
	if err != nil {
		return nil, err
	}
	return &rrc.Message{
		Message: rrc.MessageType{
			Choice: rrc.MessageTypeChoiceC1,
			C1: &rrc.C1{
				Choice:                      rrc.C1ChoiceSystemInformationBlockType1,
				SystemInformationBlockType1: sib1,
			},
		},
	}, nil
}

func (d *decoder) sib1(path string) (*rrc.SIB1, error) {
	hasCellSelection, err := d.r.ReadBit()
	if err != nil {
		return nil, d.fail(path, err)
	}
	s := &rrc.SIB1{}
	if hasCellSelection {
		r := d.sch.QRxLevMin
		q, err := per.ReadConstrainedInt(d.r, r.Lower, r.Upper)
		if err != nil {
			return nil, d.fail(path+".cellSelectionInfo.q-RxLevMin", err)
		}
		s.CellSelectionInfo = &rrc.CellSelectionInfo{QRxLevMin: q}
	}

	listPath := path + ".cellAccessRelatedInfo.plmn-IdentityInfoList"
	n, err := d.size(listPath, d.sch.PLMNIdentityInfoList)
	if err != nil {
		return nil, err
	}
	infos := make([]rrc.PLMNIdentityInfo, n)
	for i := range infos {
		ids, err := d.plmnIdentityList(fmt.Sprintf("%s[%d].plmn-IdentityList", listPath, i))
		if err != nil {
			return nil, err
		}
		infos[i].PLMNIdentityList = ids
	}
	s.CellAccessRelatedInfo.PLMNIdentityInfoList = infos
	return s, nil
}

func (d *decoder) plmnIdentityList(path string) ([]rrc.PLMNIdentity, error) {
	n, err := d.size(path, d.sch.PLMNIdentityList)
	if err != nil {
		return nil, err
	}
	ids := make([]rrc.PLMNIdentity, n)
	for i := range ids {
		idPath := fmt.Sprintf("%s[%d]", path, i)
		hasMCC, err := d.r.ReadBit()
		if err != nil {
			return nil, d.fail(idPath, err)
		}
		if hasMCC {
			mcc, err := d.digits(idPath+".mcc", d.sch.MCC)
			if err != nil {
				return nil, err
			}
			ids[i].MCC = rrc.MCC(mcc)
		}
		mnc, err := d.digits(idPath+".mnc", d.sch.MNC)
		if err != nil {
			return nil, err
		}
		ids[i].MNC = rrc.MNC(mnc)
	}
	return ids, nil
}

func (d *decoder) digits(path string, size schema.SizeRange) ([]rrc.Digit, error) {
	n, err := d.size(path, size)
	if err != nil {
		return nil, err
	}
	out := make([]rrc.Digit, n)
	for i := range out {
		v, err := per.ReadConstrainedInt(d.r, d.sch.Digit.Lower, d.sch.Digit.Upper)
		if err != nil {
			return nil, d.fail(fmt.Sprintf("%s[%d]", path, i), err)
		}
		out[i] = rrc.Digit(v)
	}
	return out, nil
}

func (d *decoder) size(path string, r schema.SizeRange) (int, error) {
	n, err := per.ReadSize(d.r, r.Lower, r.Upper)
	if err != nil {
		return 0, d.fail(path, err)
	}
	return n, nil
}
