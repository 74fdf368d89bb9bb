package rrc

import (
	"fmt"
	"io"
	"strings"
)

type dumper struct {
	w     io.Writer
	depth int
	err   error
}

// Dump writes an XER-style rendering of m to w.
func Dump(w io.Writer, m *Message) error {
	d := &dumper{w: w}
	d.open("BCCH-DL-SCH-Message")
	d.open("message")
	if m != nil && m.Message.Choice == MessageTypeChoiceC1 && m.Message.C1 != nil {
		d.open("c1")
		if sib1 := m.SIB1(); sib1 != nil {
			d.sib1(sib1)
		}
		d.close("c1")
	}
	d.close("message")
	d.close("BCCH-DL-SCH-Message")
	return d.err
}

func (d *dumper) sib1(s *SIB1) {
	d.open("systemInformationBlockType1")
	if s.CellSelectionInfo != nil {
		d.open("cellSelectionInfo")
		d.leaf("q-RxLevMin", fmt.Sprintf("%d", s.CellSelectionInfo.QRxLevMin))
		d.close("cellSelectionInfo")
	}
	d.open("cellAccessRelatedInfo")
	d.open("plmn-IdentityInfoList")
	for _, info := range s.CellAccessRelatedInfo.PLMNIdentityInfoList {
		d.open("PLMN-IdentityInfo")
		d.open("plmn-IdentityList")
		for _, id := range info.PLMNIdentityList {
			d.open("PLMN-Identity")
			if id.MCC != nil {
				d.digits("mcc", id.MCC)
			}
			d.digits("mnc", id.MNC)
			d.close("PLMN-Identity")
		}
		d.close("plmn-IdentityList")
		d.close("PLMN-IdentityInfo")
	}
	d.close("plmn-IdentityInfoList")
	d.close("cellAccessRelatedInfo")
	d.close("systemInformationBlockType1")
}

func (d *dumper) digits(tag string, digits []Digit) {
	d.open(tag)
	for _, v := range digits {
		d.leaf("MCC-MNC-Digit", fmt.Sprintf("%d", v))
	}
	d.close(tag)
}

func (d *dumper) open(tag string) {
	d.line("<" + tag + ">")
	d.depth++
}

func (d *dumper) close(tag string) {
	d.depth--
	d.line("</" + tag + ">")
}

func (d *dumper) leaf(tag, value string) {
	d.line("<" + tag + ">" + value + "</" + tag + ">")
}

func (d *dumper) line(s string) {
	if d.err != nil {
		return
	}
	_, d.err = io.WriteString(d.w, strings.Repeat("    ", d.depth)+s+"\n")
}
