package core

import (
	"errors"
	"testing"
)

func TestValidateContentUnit(t *testing.T) {
	valid := NewContentUnit("corpus", KindText, []byte("Revenue grew 20%"), SourceLocation{Page: 1})

	tests := []struct {
		name    string
		unit    *ContentUnit
		wantErr error
	}{
		{
			name:    "valid unit",
			unit:    valid,
			wantErr: nil,
		},
		{
			name:    "nil unit",
			unit:    nil,
			wantErr: ErrInvalidContentUnit,
		},
		{
			name: "zero id",
			unit: &ContentUnit{
				Corpus:  "corpus",
				Kind:    KindText,
				Payload: []byte("x"),
			},
			wantErr: ErrInvalidContentUnit,
		},
		{
			name: "invalid kind",
			unit: &ContentUnit{
				ID:      1,
				Corpus:  "corpus",
				Kind:    Kind(9),
				Payload: []byte("x"),
			},
			wantErr: ErrInvalidKind,
		},
		{
			name: "empty payload",
			unit: &ContentUnit{
				ID:     1,
				Corpus: "corpus",
				Kind:   KindImage,
			},
			wantErr: ErrEmptyPayload,
		},
		{
			name: "missing corpus",
			unit: &ContentUnit{
				ID:      1,
				Kind:    KindTable,
				Payload: []byte("<table></table>"),
			},
			wantErr: ErrEmptyCorpus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContentUnit(tt.unit)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateContentUnit() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateContentUnit() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSurrogate(t *testing.T) {
	unit := NewContentUnit("corpus", KindTable, []byte("<table/>"), SourceLocation{})
	other := NewContentUnit("corpus", KindText, []byte("other"), SourceLocation{})

	tests := []struct {
		name      string
		surrogate *Surrogate
		unit      *ContentUnit
		wantErr   error
	}{
		{
			name:      "valid surrogate",
			surrogate: &Surrogate{UnitID: unit.ID, Text: "A table of sales"},
			unit:      unit,
		},
		{
			name:    "nil surrogate",
			unit:    unit,
			wantErr: ErrInvalidSurrogate,
		},
		{
			name:      "empty text",
			surrogate: &Surrogate{UnitID: unit.ID},
			unit:      unit,
			wantErr:   ErrEmptySurrogateText,
		},
		{
			name:      "different unit",
			surrogate: &Surrogate{UnitID: unit.ID, Text: "A table of sales"},
			unit:      other,
			wantErr:   ErrUnitMismatch,
		},
		{
			name:      "missing unit",
			surrogate: &Surrogate{UnitID: unit.ID, Text: "A table of sales"},
			wantErr:   ErrUnitMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSurrogate(tt.surrogate, tt.unit)

			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSurrogate() error = %v, want nil", err)
				}
				return
			}

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSurrogate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateKind(t *testing.T) {
	for _, kind := range Kinds() {
		if err := ValidateKind(kind); err != nil {
			t.Errorf("ValidateKind(%v) error = %v", kind, err)
		}
	}
	for _, kind := range []Kind{0, -1, 4} {
		if err := ValidateKind(kind); !errors.Is(err, ErrInvalidKind) {
			t.Errorf("ValidateKind(%d) error = %v, want %v", kind, err, ErrInvalidKind)
		}
	}
}
