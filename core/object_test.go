package core

import (
	"testing"
)

func TestObjectStrings(t *testing.T) {
	tests := []struct {
		obj  Object
		want string
	}{
		{Null{}, "null"},
		{Bool(true), "true"},
		{Int(-3), "-3"},
		{Real(2.5), "2.5"},
		{Name("Type"), "/Type"},
		{Array{Int(1), Name("A"), nil}, "[1 /A null]"},
		{Dict{"B": Int(2), "A": Int(1)}, "<</A 1 /B 2>>"},
		{IndirectRef{Number: 4, Generation: 0}, "4 0 R"},
	}
	for _, tt := range tests {
		if got := tt.obj.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
	if ObjStream.String() != "Stream" || ObjectType(99).String() != "Unknown" {
		t.Error("ObjectType.String mismatch")
	}
}

func TestDictGetters(t *testing.T) {
	d := Dict{
		"I": Int(3), "R": Real(1.5), "N": Name("X"), "S": String("s"), "B": Bool(true),
		"A": Array{Int(1), Real(2)}, "D": Dict{}, "Ref": IndirectRef{Number: 1},
		"St": &Stream{},
	}

	if v, ok := d.GetInt("I"); !ok || v != 3 {
		t.Errorf("GetInt = %v, %v", v, ok)
	}
	if v, ok := d.GetInt("R"); !ok || v != 1 {
		t.Errorf("GetInt on Real = %v, %v", v, ok)
	}
	if v, ok := d.GetNumber("R"); !ok || v != 1.5 {
		t.Errorf("GetNumber = %v, %v", v, ok)
	}
	if _, ok := d.GetNumber("N"); ok {
		t.Error("GetNumber on name should fail")
	}
	if v, _ := d.GetName("N"); v != "X" {
		t.Errorf("GetName = %v", v)
	}
	if v, _ := d.GetString("S"); v != "s" {
		t.Errorf("GetString = %v", v)
	}
	if v, _ := d.GetBool("B"); !bool(v) {
		t.Error("GetBool")
	}
	if _, ok := d.GetDict("D"); !ok {
		t.Error("GetDict")
	}
	if _, ok := d.GetStream("St"); !ok {
		t.Error("GetStream")
	}
	if r, _ := d.GetIndirectRef("Ref"); r.Number != 1 {
		t.Error("GetIndirectRef")
	}
	if nums, ok := d["A"].(Array).Numbers(); !ok || nums[1] != 2 {
		t.Errorf("Numbers = %v, %v", nums, ok)
	}
	if _, ok := (Array{Name("x")}).Numbers(); ok {
		t.Error("Numbers should fail on a name")
	}
	if (Array{}).Get(3) != nil {
		t.Error("Get out of range should be nil")
	}
	if !d.Has("I") || d.Has("missing") {
		t.Error("Has mismatch")
	}
	if keys := d.Keys(); keys[0] != "A" {
		t.Errorf("Keys not sorted: %v", keys)
	}
}
