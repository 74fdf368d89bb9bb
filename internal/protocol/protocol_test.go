package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/danmuck/sib1ctl/internal/protocol/per"
	"github.com/danmuck/sib1ctl/internal/protocol/schema"
	"github.com/danmuck/sib1ctl/internal/rrc"
	"github.com/danmuck/sib1ctl/internal/testutil/testlog"
)

func sampleMessage(t *testing.T) *rrc.Message {
	t.Helper()
	msg, err := rrc.BuildPlan(rrc.SamplePlan())
	if err != nil {
		t.Fatalf("build sample: %v", err)
	}
	return msg
}

func TestEncodeSampleMatchesGolden(t *testing.T) {
	testlog.Start(t)
	got, bits, err := Encode(sampleMessage(t), DefaultEncodeOptions())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// c1(0) sib1(1) | present | q=-70 | 1 info | 1 id | mcc present 3 1 0 | mnc len 3: 2 6 0
	want := []byte{0x60, 0x00, 0x4C, 0x42, 0x4C, 0x00}
	if bits != 43 {
		t.Fatalf("bits got=%d want=43", bits)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("payload got=% X want=% X", got, want)
	}
}

func TestEncodeGoldenVariants(t *testing.T) {
	testlog.Start(t)
	partial, err := rrc.NewBuilder().AddPLMNInfo(rrc.PLMNSpec{MNC: "01"}).CellSelection(-22).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	cases := []struct {
		name string
		msg  *rrc.Message
		sch  schema.Schema
		bits int
		want []byte
	}{
		{"single-alternative choices", sampleMessage(t), schema.Minimal(), 41, []byte{0x80, 0x01, 0x31, 0x09, 0x30, 0x00}},
		{"mcc absent two-digit mnc", partial, schema.Default(), 27, []byte{0x78, 0x00, 0x00, 0x20}},
	}
	for _, tc := range cases {
		got, bits, err := Encode(tc.msg, EncodeOptions{Schema: tc.sch})
		if err != nil {
			t.Fatalf("%s: encode: %v", tc.name, err)
		}
		if bits != tc.bits || !bytes.Equal(got, tc.want) {
			t.Fatalf("%s: got %d bits % X want %d bits % X", tc.name, bits, got, tc.bits, tc.want)
		}
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	testlog.Start(t)
	msg := sampleMessage(t)
	first, _, err := Encode(msg, DefaultEncodeOptions())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _, err := Encode(msg, DefaultEncodeOptions())
		if err != nil {
			t.Fatalf("encode #%d: %v", i, err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encode #%d differs: % X vs % X", i, again, first)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	testlog.Start(t)
	msg, err := rrc.NewBuilder().
		CellSelection(-48).
		AddPLMNInfo(rrc.PLMNSpec{MCC: "310", MNC: "260"}, rrc.PLMNSpec{MNC: "07"}).
		AddPLMNInfo(rrc.PLMNSpec{MCC: "001", MNC: "999"}).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, sch := range []schema.Schema{schema.Default(), schema.Minimal()} {
		payload, _, err := Encode(msg, EncodeOptions{Schema: sch})
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := Decode(payload, sch)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !reflect.DeepEqual(got, msg) {
			t.Fatalf("round trip mismatch:\n got=%+v\nwant=%+v", got.SIB1(), msg.SIB1())
		}
	}
}

func TestDecodeSampleScenario(t *testing.T) {
	testlog.Start(t)
	got, err := Decode([]byte{0x60, 0x00, 0x4C, 0x42, 0x4C, 0x00}, schema.Default())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sib1 := got.SIB1()
	if sib1.CellSelectionInfo == nil || sib1.CellSelectionInfo.QRxLevMin != -70 {
		t.Fatalf("unexpected q-RxLevMin: %+v", sib1.CellSelectionInfo)
	}
	id := sib1.CellAccessRelatedInfo.PLMNIdentityInfoList[0].PLMNIdentityList[0]
	if id.MCC.String() != "310" || id.MNC.String() != "260" {
		t.Fatalf("unexpected plmn mcc=%s mnc=%s", id.MCC, id.MNC)
	}
}

func TestPresenceBitmapCostsOneBitPerOptionalField(t *testing.T) {
	testlog.Start(t)
	with, err := rrc.NewBuilder().CellSelection(-70).AddPLMNInfo(rrc.PLMNSpec{MCC: "310", MNC: "26"}).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	without, err := rrc.NewBuilder().AddPLMNInfo(rrc.PLMNSpec{MNC: "26"}).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	_, withBits, err := Encode(with, DefaultEncodeOptions())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, withoutBits, err := Encode(without, DefaultEncodeOptions())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Absent fields drop their contents (6 bits q-RxLevMin, 12 bits mcc) but keep their presence bits.
	if withBits-withoutBits != 6+12 {
		t.Fatalf("bit delta got=%d want=18", withBits-withoutBits)
	}
}

func TestEncodeEmptyMNCFails(t *testing.T) {
	testlog.Start(t)
	msg := sampleMessage(t)
	msg.SIB1().CellAccessRelatedInfo.PLMNIdentityInfoList[0].PLMNIdentityList[0].MNC = rrc.MNC{}

	payload, bits, err := Encode(msg, DefaultEncodeOptions())
	if payload != nil || bits != 0 {
		t.Fatalf("expected no output on failure")
	}
	var ee *EncodingError
	if !errors.As(err, &ee) {
		t.Fatalf("expected EncodingError, got %v", err)
	}
	want := "message.c1.systemInformationBlockType1.cellAccessRelatedInfo.plmn-IdentityInfoList[0].plmn-IdentityList[0].mnc"
	if ee.Field != want {
		t.Fatalf("field got=%q want=%q", ee.Field, want)
	}
	if !errors.Is(err, per.ErrValueOutOfRange) {
		t.Fatalf("expected ErrValueOutOfRange, got %v", err)
	}
}

func TestEncodeEmptyMNCFailsUnderLoosenedSchema(t *testing.T) {
	testlog.Start(t)
	msg := sampleMessage(t)
	msg.SIB1().CellAccessRelatedInfo.PLMNIdentityInfoList[0].PLMNIdentityList[0].MNC = rrc.MNC{}

	sch := schema.Default()
	sch.MNC = schema.SizeRange{Lower: 0, Upper: 3}
	sch.Digit = schema.IntRange{Lower: 0, Upper: 15}
	payload, _, err := Encode(msg, EncodeOptions{Schema: sch})
	if payload != nil {
		t.Fatalf("expected no output, got % X", payload)
	}
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestEncodeConstraintViolations(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		name   string
		mutate func(*rrc.SIB1)
		field  string
	}{
		{
			"q-RxLevMin below range",
			func(s *rrc.SIB1) { s.CellSelectionInfo.QRxLevMin = -71 },
			"message.c1.systemInformationBlockType1.cellSelectionInfo.q-RxLevMin",
		},
		{
			"digit above nine",
			func(s *rrc.SIB1) { s.CellAccessRelatedInfo.PLMNIdentityInfoList[0].PLMNIdentityList[0].MCC[1] = 10 },
			"message.c1.systemInformationBlockType1.cellAccessRelatedInfo.plmn-IdentityInfoList[0].plmn-IdentityList[0].mcc[1]",
		},
		{
			"two-digit mcc",
			func(s *rrc.SIB1) { s.CellAccessRelatedInfo.PLMNIdentityInfoList[0].PLMNIdentityList[0].MCC = rrc.MCC{3, 1} },
			"message.c1.systemInformationBlockType1.cellAccessRelatedInfo.plmn-IdentityInfoList[0].plmn-IdentityList[0].mcc",
		},
		{
			"empty plmn info list",
			func(s *rrc.SIB1) { s.CellAccessRelatedInfo.PLMNIdentityInfoList = nil },
			"message.c1.systemInformationBlockType1.cellAccessRelatedInfo.plmn-IdentityInfoList",
		},
	}
	for _, tc := range cases {
		msg := sampleMessage(t)
		tc.mutate(msg.SIB1())
		_, _, err := Encode(msg, DefaultEncodeOptions())
		var ee *EncodingError
		if !errors.As(err, &ee) {
			t.Fatalf("%s: expected EncodingError, got %v", tc.name, err)
		}
		if ee.Field != tc.field {
			t.Fatalf("%s: field got=%q want=%q", tc.name, ee.Field, tc.field)
		}
	}
}

func TestEncodeCapacityExceeded(t *testing.T) {
	testlog.Start(t)
	_, _, err := Encode(sampleMessage(t), EncodeOptions{Schema: schema.Default(), Capacity: 4})
	if !errors.Is(err, per.ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	var ee *EncodingError
	if !errors.As(err, &ee) {
		t.Fatalf("expected EncodingError, got %T", err)
	}
}

func TestEncodeUnboundedListUsesLengthDeterminant(t *testing.T) {
	testlog.Start(t)
	sch := schema.Default()
	sch.PLMNIdentityInfoList = schema.SizeRange{Lower: 1, Upper: -1}
	msg := sampleMessage(t)
	payload, bits, err := Encode(msg, EncodeOptions{Schema: sch})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// One octet length determinant replaces the 4-bit constrained count.
	if bits != 43-4+8 {
		t.Fatalf("bits got=%d want=47", bits)
	}
	got, err := Decode(payload, sch)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, msg) {
		t.Fatalf("round trip mismatch")
	}
}

func TestEncodeRejectsUnsupportedAlternativeAndNil(t *testing.T) {
	testlog.Start(t)
	if _, _, err := Encode(nil, DefaultEncodeOptions()); !errors.Is(err, ErrNilMessage) {
		t.Fatalf("expected ErrNilMessage, got %v", err)
	}
	msg := &rrc.Message{Message: rrc.MessageType{Choice: rrc.MessageTypeChoiceNothing}}
	if _, _, err := Encode(msg, DefaultEncodeOptions()); !errors.Is(err, ErrUnsupportedAlternative) {
		t.Fatalf("expected ErrUnsupportedAlternative, got %v", err)
	}
	msg = &rrc.Message{Message: rrc.MessageType{Choice: rrc.MessageTypeChoiceC1, C1: &rrc.C1{}}}
	_, _, err := Encode(msg, DefaultEncodeOptions())
	var ee *EncodingError
	if !errors.As(err, &ee) || ee.Field != "message.c1" {
		t.Fatalf("expected message.c1 failure, got %v", err)
	}
}

func TestEncodeRejectsInvalidSchema(t *testing.T) {
	testlog.Start(t)
	_, _, err := Encode(sampleMessage(t), EncodeOptions{})
	if !errors.Is(err, ErrInvalidSchema) {
		t.Fatalf("expected ErrInvalidSchema, got %v", err)
	}
}

func TestDecodeErrors(t *testing.T) {
	testlog.Start(t)
	if _, err := Decode([]byte{0x60, 0x00}, schema.Default()); !errors.Is(err, per.ErrInsufficientBits) {
		t.Fatalf("expected ErrInsufficientBits, got %v", err)
	}
	if _, err := Decode([]byte{0x60, 0x00, 0x4C, 0x42, 0x4C, 0x00, 0x00}, schema.Default()); !errors.Is(err, ErrTrailingData) {
		t.Fatalf("expected ErrTrailingData, got %v", err)
	}
	// Outer choice selects messageClassExtension.
	if _, err := Decode([]byte{0xE0, 0x00, 0x4C, 0x42, 0x4C, 0x00}, schema.Default()); !errors.Is(err, ErrUnsupportedAlternative) {
		t.Fatalf("expected ErrUnsupportedAlternative, got %v", err)
	}
}
