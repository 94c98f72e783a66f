package cadet_test

import (
	"testing"

	"sqnportal/internal/domain/cadet"
)

// TestCadet_Validate tests validation of Cadet.
func TestCadet_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cadet   cadet.Cadet
		wantErr error
	}{
		{
			name:  "valid with serial",
			cadet: cadet.Cadet{ID: "1", Serial: "123456", Sqn: "30", Rank: "CDT", FullName: "B Loggins"},
		},
		{
			name:  "valid without serial",
			cadet: cadet.Cadet{ID: "2", Sqn: "30", Rank: "LCPL", FullName: "C Rivers"},
		},
		{
			name:    "empty sqn",
			cadet:   cadet.Cadet{ID: "3", Rank: "CDT", FullName: "D Hills"},
			wantErr: cadet.ErrEmptySqn,
		},
		{
			name:    "empty rank",
			cadet:   cadet.Cadet{ID: "4", Sqn: "30", FullName: "D Hills"},
			wantErr: cadet.ErrEmptyRank,
		},
		{
			name:    "whitespace name",
			cadet:   cadet.Cadet{ID: "5", Sqn: "30", Rank: "CDT", FullName: "  "},
			wantErr: cadet.ErrEmptyFullName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cadet.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
