package vehiclenlp

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input     string
		wantYear  string
		wantMake  string
		wantModel []string
		wantAll   []string
	}{
		{"2020 Honda CBR600", "2020", "honda", []string{"cbr600"}, []string{"honda", "cbr600"}},
		{"Honda CBR600", "", "honda", []string{"cbr600"}, []string{"honda", "cbr600"}},
		{"Arctic Cat DVX50 ATV 2006", "2006", "arctic cat", []string{"dvx50"}, []string{"arctic", "cat", "dvx50"}},
		{"Yamaha YZF-R6 2019 motorcycle", "2019", "yamaha", []string{"yzf", "r6"}, []string{"yamaha", "yzf", "r6"}},
		{"Harley-Davidson Road King 2015", "2015", "harley-davidson", []string{"road", "king"}, []string{"harley", "davidson", "road", "king"}},
		{"can-am outlander 650", "", "can-am", []string{"outlander", "650"}, []string{"can", "am", "outlander", "650"}},
		{"Sea-Doo GTI 130 jet ski", "", "sea-doo", []string{"gti", "130"}, []string{"sea", "doo", "gti", "130"}},
		{"polaris rzr 900, side-by-side", "", "polaris", []string{"rzr", "900"}, []string{"polaris", "rzr", "900"}},
		{"CX-Sport 100 dirt bike", "", "", []string{"cx", "sport", "100"}, []string{"cx", "sport", "100"}},
		{"gl1800 goldwing", "", "", []string{"gl1800", "goldwing"}, []string{"gl1800", "goldwing"}},
		{"  HONDA   trx/450r  ", "", "honda", []string{"trx", "450r"}, []string{"honda", "trx", "450r"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			q := Normalize(tt.input)
			if q.Original != tt.input {
				t.Errorf("Original = %q, want %q", q.Original, tt.input)
			}
			if q.Year != tt.wantYear {
				t.Errorf("Year = %q, want %q", q.Year, tt.wantYear)
			}
			if q.Make != tt.wantMake {
				t.Errorf("Make = %q, want %q", q.Make, tt.wantMake)
			}
			if !reflect.DeepEqual(q.ModelTerms, tt.wantModel) {
				t.Errorf("ModelTerms = %v, want %v", q.ModelTerms, tt.wantModel)
			}
			if !reflect.DeepEqual(q.AllTerms, tt.wantAll) {
				t.Errorf("AllTerms = %v, want %v", q.AllTerms, tt.wantAll)
			}
		})
	}
}

func TestNormalize_YearRange(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1899 something", ""},
		{"1900 something", "1900"},
		{"2099 something", "2099"},
		{"2100 something", ""},
		{"gl1800", ""},
		{"model 19999", ""},
		{"2006-2009 kfx450", "2006"},
		{"2020.5 honda cbr", ""},
		{"cbr600rr 2020", "2020"},
		{"honda cbr600,2021", "2021"},
		{"(2020) honda", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input).Year; got != tt.want {
			t.Errorf("Normalize(%q).Year = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNormalize_YearRemovedFromTerms(t *testing.T) {
	q := Normalize("2006-2009 kfx450")
	want := []string{"2009", "kfx450"}
	if !reflect.DeepEqual(q.ModelTerms, want) {
		t.Errorf("ModelTerms = %v, want %v", q.ModelTerms, want)
	}
}

func TestNormalize_DecimalYearKeptWhole(t *testing.T) {
	q := Normalize("2020.5 honda cbr")
	want := []string{"2020.5", "honda", "cbr"}
	if q.Year != "" || !reflect.DeepEqual(q.AllTerms, want) {
		t.Errorf("Year = %q AllTerms = %v, want no year and %v", q.Year, q.AllTerms, want)
	}
}

func TestNormalize_Empty(t *testing.T) {
	for _, in := range []string{"", "   ", "motorcycle", "atv scooter"} {
		q := Normalize(in)
		if q.Year != "" || q.Make != "" || len(q.ModelTerms) != 0 || len(q.AllTerms) != 0 {
			t.Errorf("Normalize(%q) = %+v, want empty", in, q)
		}
		if !q.Ambiguous() {
			t.Errorf("Normalize(%q) should be ambiguous", in)
		}
		if q.ModelTerms == nil || q.AllTerms == nil {
			t.Errorf("Normalize(%q) returned nil slices", in)
		}
	}
}

func TestNormalize_MakeOnlyFirstPosition(t *testing.T) {
	q := Normalize("cbr600 honda")
	if q.Make != "" {
		t.Errorf("Make = %q, want none when make is not leading", q.Make)
	}
	if !reflect.DeepEqual(q.ModelTerms, []string{"cbr600", "honda"}) {
		t.Errorf("ModelTerms = %v", q.ModelTerms)
	}
}

func TestLookupMake(t *testing.T) {
	if m, ok := LookupMake("harley"); !ok || m != "harley-davidson" {
		t.Errorf("LookupMake(harley) = %q, %v", m, ok)
	}
	if _, ok := LookupMake("lada"); ok {
		t.Error("LookupMake(lada) should miss")
	}
}
