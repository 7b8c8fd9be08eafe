package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"

	"github.com/fieldtrack/assettrack/internal/core/domain"
)

func fkError(constraint string) error {
	return fmt.Errorf("insert: %w", &pq.Error{
		Code:       pq.ErrorCode(codeForeignKeyViolation),
		Constraint: constraint,
	})
}

func TestRelationInsertError_MapsViolatedSide(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"missing item", fkError("order_items_item_id_fkey"), domain.ErrItemNotFound},
		{"missing order", fkError("order_items_order_id_fkey"), domain.ErrOrderNotFound},
		{"unique violation passes through", fmt.Errorf("insert: %w", &pq.Error{Code: pq.ErrorCode(codeUniqueViolation)}), nil},
		{"plain error passes through", errors.New("connection reset"), nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := relationInsertError(tc.err); !errors.Is(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestViolationPredicates(t *testing.T) {
	unique := &pq.Error{Code: pq.ErrorCode(codeUniqueViolation), Constraint: "items_tag_id_key"}
	if !isUniqueViolation(fmt.Errorf("wrapped: %w", unique)) {
		t.Error("unique violation not detected through wrapping")
	}
	if isForeignKeyViolation(unique) {
		t.Error("unique violation misread as foreign key violation")
	}
	if got := violatedConstraint(unique); got != "items_tag_id_key" {
		t.Errorf("constraint: got %q", got)
	}
	if got := violatedConstraint(errors.New("not a driver error")); got != "" {
		t.Errorf("expected empty constraint for plain error, got %q", got)
	}
}
