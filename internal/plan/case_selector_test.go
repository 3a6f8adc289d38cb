package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"option-tagger/internal/analyze"
	"option-tagger/internal/directive"
)

func TestSelectCase(t *testing.T) {
	var (
		none     = FieldIntent{Field: "T.F"}
		nullable = FieldIntent{Field: "T.F", Nullable: true}
		notReq   = FieldIntent{Field: "T.F", NotRequired: true}
		both     = FieldIntent{Field: "T.F", Nullable: true, NotRequired: true}
		skip     = FieldIntent{Field: "T.F", HasSkip: true}
		skipNull = FieldIntent{Field: "T.F", HasSkip: true, Nullable: true}
		custom   = FieldIntent{
			Field:                "T.F",
			Nullable:             true,
			HasCustomWithHandler: true,
			CustomHandler:        directive.KeyValue("with", "base64"),
		}
		explicit = FieldIntent{Field: "T.F", NotRequired: true, HasExplicitDefault: true}
	)

	tests := []struct {
		name   string
		intent FieldIntent
		shape  analyze.OptionShape
		policy SkipPolicy
		want   SemanticCase
		kind   ConflictKind
	}{
		{"skip without markers", skip, analyze.ShapeNone, SkipReject, CaseSkipped, ""},
		{"skip with markers rejected", skipNull, analyze.ShapeSingle, SkipReject, CaseConflict, KindConflict},
		{"skip with markers ignored", skipNull, analyze.ShapeSingle, SkipIgnore, CaseSkipped, ""},
		{"skip wins over bad shape when ignored", skipNull, analyze.ShapeNone, SkipIgnore, CaseSkipped, ""},
		{"plain optional", none, analyze.ShapeSingle, SkipReject, CasePlainOptional, ""},
		{"plain non-optional", none, analyze.ShapeNone, SkipReject, CasePlainOptional, ""},
		{"custom handler", custom, analyze.ShapeSingle, SkipReject, CaseConflict, KindConflict},
		{"custom handler before shape", custom, analyze.ShapeNone, SkipReject, CaseConflict, KindConflict},
		{"nullable on non-optional", nullable, analyze.ShapeNone, SkipReject, CaseConflict, KindMalformedTypeShape},
		{"nullable on unsupported", nullable, analyze.ShapeUnsupported, SkipReject, CaseConflict, KindMalformedTypeShape},
		{"nullable", nullable, analyze.ShapeSingle, SkipReject, CaseNullable, ""},
		{"not required", notReq, analyze.ShapeSingle, SkipReject, CaseNotRequired, ""},
		{"explicit default does not change the case", explicit, analyze.ShapeSingle, SkipReject, CaseNotRequired, ""},
		{"both on double", both, analyze.ShapeDouble, SkipReject, CaseNullableAndNotRequired, ""},
		{"both on single", both, analyze.ShapeSingle, SkipReject, CaseConflict, KindMalformedTypeShape},
		{"nullable on double", nullable, analyze.ShapeDouble, SkipReject, CaseConflict, KindMalformedTypeShape},
		{"not required on double", notReq, analyze.ShapeDouble, SkipReject, CaseConflict, KindMalformedTypeShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, cerr := SelectCase(tt.intent, tt.shape, tt.policy)
			assert.Equal(t, tt.want, got)

			if tt.want != CaseConflict {
				assert.Nil(t, cerr)
				return
			}

			require.NotNil(t, cerr)
			assert.Equal(t, tt.kind, cerr.Kind)
			assert.Equal(t, "T.F", cerr.Field)
		})
	}
}

func TestSelectCase_ConflictNamesPair(t *testing.T) {
	intent := FieldIntent{
		Field:                "Shipment.Tracking",
		Nullable:             true,
		HasCustomWithHandler: true,
		CustomHandler:        directive.KeyValue("with", "base64"),
	}

	_, cerr := SelectCase(intent, analyze.ShapeSingle, SkipReject)
	require.NotNil(t, cerr)

	assert.Equal(t, `"nullable"`, cerr.Left)
	assert.Equal(t, `"with:base64"`, cerr.Right)
	assert.Equal(t, `Shipment.Tracking: marker "nullable" conflicts with "with:base64"`, cerr.Error())

	var err error = cerr
	assert.ErrorContains(t, err, "with:base64")
}

func TestSelectCase_SkipConflict(t *testing.T) {
	_, cerr := SelectCase(FieldIntent{Field: "T.F", HasSkip: true, NotRequired: true}, analyze.ShapeSingle, SkipReject)
	require.NotNil(t, cerr)
	assert.Equal(t, `"not_required"`, cerr.Left)
	assert.Equal(t, `"-"`, cerr.Right)
}

func TestSelectCase_Deterministic(t *testing.T) {
	intent := FieldIntent{Field: "T.F", Nullable: true, NotRequired: true}

	first, _ := SelectCase(intent, analyze.ShapeDouble, SkipReject)
	for range 10 {
		got, _ := SelectCase(intent, analyze.ShapeDouble, SkipReject)
		assert.Equal(t, first, got)
	}
}
