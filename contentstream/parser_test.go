package contentstream

import (
	"reflect"
	"testing"

	"github.com/tsawler/pagevisuals/core"
)

func parse(t *testing.T, input string) []Operation {
	t.Helper()
	ops, err := NewParser([]byte(input)).Parse()
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", input, err)
	}
	return ops
}

func TestParseOperations(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Operation
	}{
		{"empty", "", nil},
		{"whitespace", "  \n\t ", nil},
		{"no operands", "q Q", []Operation{{"q", nil}, {"Q", nil}}},
		{
			"rectangle and fill",
			"10 20 30.5 -4 re f*",
			[]Operation{
				{"re", []core.Object{core.Int(10), core.Int(20), core.Real(30.5), core.Int(-4)}},
				{"f*", nil},
			},
		},
		{
			"cm with reals",
			"1 0 0 1 .5 -.25 cm",
			[]Operation{{"cm", []core.Object{core.Int(1), core.Int(0), core.Int(0), core.Int(1), core.Real(.5), core.Real(-.25)}}},
		},
		{
			"names and arrays",
			"/Im1 Do [(A) -120 (B)] TJ",
			[]Operation{
				{"Do", []core.Object{core.Name("Im1")}},
				{"TJ", []core.Object{core.Array{core.String("A"), core.Int(-120), core.String("B")}}},
			},
		},
		{
			"quote operators",
			"(x) ' 1 2 (y) \"",
			[]Operation{
				{"'", []core.Object{core.String("x")}},
				{`"`, []core.Object{core.Int(1), core.Int(2), core.String("y")}},
			},
		},
		{
			"dict operand",
			"/Span << /MCID 3 >> BDC EMC",
			[]Operation{
				{"BDC", []core.Object{core.Name("Span"), core.Dict{"MCID": core.Int(3)}}},
				{"EMC", nil},
			},
		},
		{
			"references are not formed",
			"1 0 0 RG",
			[]Operation{{"RG", []core.Object{core.Int(1), core.Int(0), core.Int(0)}}},
		},
		{
			"comments",
			"q % save\nQ",
			[]Operation{{"q", nil}, {"Q", nil}},
		},
		{
			"booleans",
			"true false null sh",
			[]Operation{{"sh", []core.Object{core.Bool(true), core.Bool(false), core.Null{}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parse(t, tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %#v\nwant %#v", got, tt.want)
			}
		})
	}
}

func TestParseIndependentInstances(t *testing.T) {
	// operands left dangling in one stream must not leak into another
	if _, err := NewParser([]byte("1 2 3")).Parse(); err != nil {
		t.Fatal(err)
	}
	ops := parse(t, "q")
	if len(ops) != 1 || len(ops[0].Operands) != 0 {
		t.Errorf("operands leaked between parsers: %#v", ops)
	}
}

func TestParseRecoversFromGarbage(t *testing.T) {
	ops, err := NewParser([]byte("q ) 5 w [1 endobj] 7 w Q")).Parse()
	if err == nil {
		t.Error("expected the first malformed token to be reported")
	}
	var names []string
	for _, op := range ops {
		names = append(names, op.Operator)
	}
	if want := []string{"q", "w", "w", "Q"}; !reflect.DeepEqual(names, want) {
		t.Errorf("recovered %v, want %v", names, want)
	}
}

func TestParseInlineImage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantData string
		wantKey  string
		wantVal  core.Object
	}{
		{
			name:     "unfiltered with computed length containing EI bytes",
			input:    "q BI /W 2 /H 2 /CS /G /BPC 8 ID E I\x00 EI Q",
			wantData: "E I\x00",
			wantKey:  "ColorSpace",
			wantVal:  core.Name("DeviceGray"),
		},
		{
			name:     "filtered scans for EI",
			input:    "BI /W 4 /H 4 /F /AHx ID 00ff00ff>\nEI Q",
			wantData: "00ff00ff>",
			wantKey:  "Filter",
			wantVal:  core.Name("ASCIIHexDecode"),
		},
		{
			name:     "filter array abbreviations",
			input:    "BI /W 1 /H 1 /F [/AHx /Fl] ID xyz EI",
			wantData: "xyz",
			wantKey:  "Filter",
			wantVal:  core.Array{core.Name("ASCIIHexDecode"), core.Name("FlateDecode")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ops := parse(t, tt.input)
			var bi *Operation
			for i := range ops {
				if ops[i].Operator == "BI" {
					bi = &ops[i]
				}
			}
			if bi == nil {
				t.Fatalf("no BI operation in %#v", ops)
			}
			dict := bi.Operands[0].(core.Dict)
			if !reflect.DeepEqual(dict[tt.wantKey], tt.wantVal) {
				t.Errorf("%s = %#v, want %#v", tt.wantKey, dict[tt.wantKey], tt.wantVal)
			}
			if got := string(bi.Operands[1].(core.String)); got != tt.wantData {
				t.Errorf("data = %q, want %q", got, tt.wantData)
			}
			if last := ops[len(ops)-1].Operator; tt.input[len(tt.input)-1] == 'Q' && last != "Q" {
				t.Errorf("parsing did not resume after EI, last op %q", last)
			}
		})
	}
}

func TestInlineLength(t *testing.T) {
	tests := []struct {
		dict core.Dict
		want int
		ok   bool
	}{
		{core.Dict{"Width": core.Int(3), "Height": core.Int(2), "ColorSpace": core.Name("DeviceRGB"), "BitsPerComponent": core.Int(8)}, 18, true},
		{core.Dict{"Width": core.Int(9), "Height": core.Int(2), "ImageMask": core.Bool(true)}, 4, true},
		{core.Dict{"Width": core.Int(3), "Height": core.Int(2), "Filter": core.Name("DCTDecode")}, 0, false},
		{core.Dict{"Length": core.Int(11), "Filter": core.Name("DCTDecode")}, 11, true},
	}
	for i, tt := range tests {
		got, ok := inlineLength(tt.dict)
		if got != tt.want || ok != tt.ok {
			t.Errorf("case %d: inlineLength = %d, %v; want %d, %v", i, got, ok, tt.want, tt.ok)
		}
	}
}
