package uniform_test

import (
	"testing"

	"sqnportal/internal/domain/uniform"
)

// TestItem_Validate tests validation of uniform Item.
func TestItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		item    uniform.Item
		wantErr error
	}{
		{
			name: "valid",
			item: uniform.Item{ID: "1", Type: "beret", Size: "57cm", Condition: uniform.ConditionGood, AddedByID: "u1"},
		},
		{
			name:    "empty type",
			item:    uniform.Item{ID: "2", Size: "M", Condition: uniform.ConditionNew, AddedByID: "u1"},
			wantErr: uniform.ErrEmptyType,
		},
		{
			name:    "empty size",
			item:    uniform.Item{ID: "3", Type: "jersey", Condition: uniform.ConditionNew, AddedByID: "u1"},
			wantErr: uniform.ErrEmptySize,
		},
		{
			name:    "bogus condition",
			item:    uniform.Item{ID: "4", Type: "jersey", Size: "M", Condition: "shredded", AddedByID: "u1"},
			wantErr: uniform.ErrInvalidCondition,
		},
		{
			name:    "no adder",
			item:    uniform.Item{ID: "5", Type: "jersey", Size: "M", Condition: uniform.ConditionWorn},
			wantErr: uniform.ErrEmptyAddedBy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.item.Validate(); err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
